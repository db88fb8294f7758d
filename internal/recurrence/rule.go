package recurrence

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	Daily  Type = "DAILY"
	Weekly Type = "WEEKLY"
)

// DateLayout is the wire format of the recurrence end date.
const DateLayout = "2006-01-02"

// Rule is the generation policy for a recurring task: the server spawns one
// assignment per matching day until EndDate (inclusive).
type Rule struct {
	Type    Type
	Days    WeekdaySet // WEEKLY only
	EndDate *time.Time
}

func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(s)) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	}
	return "", fmt.Errorf("unknown recurrence type: %q", s)
}

// Validate checks the rule is complete enough to submit.
func (r Rule) Validate() error {
	switch r.Type {
	case Daily:
		return nil
	case Weekly:
		if r.Days.Empty() {
			return fmt.Errorf("weekly recurrence needs at least one weekday")
		}
		return nil
	}
	return fmt.Errorf("unknown recurrence type: %q", string(r.Type))
}

// Matches reports whether day is an occurrence day, ignoring the end date.
func (r Rule) Matches(day time.Time) bool {
	switch r.Type {
	case Daily:
		return true
	case Weekly:
		return r.Days.Has(day.Weekday())
	}
	return false
}

// Occurrences lists the start-of-day of every occurrence in [from, to),
// never before start and never after EndDate.
func (r Rule) Occurrences(start, from, to time.Time) []time.Time {
	day := startOfDay(from)
	if s := startOfDay(start); day.Before(s) {
		day = s
	}
	var out []time.Time
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		if r.EndDate != nil && day.After(startOfDay(*r.EndDate)) {
			break
		}
		if r.Matches(day) {
			out = append(out, day)
		}
	}
	return out
}

// Next returns the first occurrence on or after from, or false when the
// rule has ended.
func (r Rule) Next(start, from time.Time) (time.Time, bool) {
	occ := r.Occurrences(start, from, startOfDay(from).AddDate(0, 0, 7))
	if len(occ) == 0 {
		return time.Time{}, false
	}
	return occ[0], true
}

// Describe returns the Portuguese summary shown next to a task, e.g.
// "Semanal (Seg, Sex) até 31/03/2026".
func (r Rule) Describe() string {
	var desc string
	switch r.Type {
	case Daily:
		desc = "Diária"
	case Weekly:
		desc = "Semanal"
		if !r.Days.Empty() {
			desc += " (" + strings.Join(r.Days.Labels(), ", ") + ")"
		}
	default:
		return ""
	}
	if r.EndDate != nil {
		desc += " até " + r.EndDate.Format("02/01/2006")
	}
	return desc
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

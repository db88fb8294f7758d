package recurrence

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

var dayNames = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
	"SUN": time.Sunday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Monday:    "MON",
	time.Tuesday:   "TUE",
	time.Wednesday: "WED",
	time.Thursday:  "THU",
	time.Friday:    "FRI",
	time.Saturday:  "SAT",
	time.Sunday:    "SUN",
}

var dayLabels = map[time.Weekday]string{
	time.Monday:    "Seg",
	time.Tuesday:   "Ter",
	time.Wednesday: "Qua",
	time.Thursday:  "Qui",
	time.Friday:    "Sex",
	time.Saturday:  "Sáb",
	time.Sunday:    "Dom",
}

// WeekdaySet is a bitmask over time.Weekday.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet { return s | 1<<uint(d) }
func (s WeekdaySet) Has(d time.Weekday) bool       { return s&(1<<uint(d)) != 0 }
func (s WeekdaySet) Empty() bool                   { return s == 0 }

func (s WeekdaySet) Len() int {
	n := 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Days returns the members Monday first.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return mondayIndex(days[i]) < mondayIndex(days[j]) })
	return days
}

// String encodes the set as the API's comma-joined codes, e.g. "MON,WED,FRI".
func (s WeekdaySet) String() string {
	var codes []string
	for _, d := range s.Days() {
		codes = append(codes, dayAbbrev[d])
	}
	return strings.Join(codes, ",")
}

// Labels returns the short Portuguese names shown on the task form.
func (s WeekdaySet) Labels() []string {
	var labels []string
	for _, d := range s.Days() {
		labels = append(labels, dayLabels[d])
	}
	return labels
}

// ParseWeekdays decodes "MON,WED,FRI". Codes are case-insensitive and
// duplicates collapse. An empty string yields the empty set.
func ParseWeekdays(val string) (WeekdaySet, error) {
	var s WeekdaySet
	if strings.TrimSpace(val) == "" {
		return s, nil
	}
	for _, code := range strings.Split(val, ",") {
		d, ok := dayNames[strings.ToUpper(strings.TrimSpace(code))]
		if !ok {
			return 0, fmt.Errorf("unknown day: %q", code)
		}
		s = s.Add(d)
	}
	return s, nil
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

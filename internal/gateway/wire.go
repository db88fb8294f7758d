package gateway

import (
	"fmt"
	"time"

	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/recurrence"
)

// taskWire is a task as the API sends it: recurrence is flattened into
// four fields, with weekdays as a comma-joined code list.
type taskWire struct {
	model.Task
	IsRecurring       bool   `json:"isRecurring"`
	RecurrenceType    string `json:"recurrenceType"`
	RecurrenceDays    string `json:"recurrenceDays"`
	RecurrenceEndDate string `json:"recurrenceEndDate"`
}

func (w taskWire) toModel() (model.Task, error) {
	t := w.Task
	if !w.IsRecurring {
		return t, nil
	}
	typ, err := recurrence.ParseType(w.RecurrenceType)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w", w.ID, err)
	}
	days, err := recurrence.ParseWeekdays(w.RecurrenceDays)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w", w.ID, err)
	}
	rule := &recurrence.Rule{Type: typ, Days: days}
	if w.RecurrenceEndDate != "" {
		end, err := parseDate(w.RecurrenceEndDate)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: recurrence end date: %w", w.ID, err)
		}
		rule.EndDate = &end
	}
	t.Recurrence = rule
	return t, nil
}

// parseDate accepts a bare ISO date or a timestamp that starts with one.
func parseDate(s string) (time.Time, error) {
	if len(s) > len(recurrence.DateLayout) {
		s = s[:len(recurrence.DateLayout)]
	}
	return time.Parse(recurrence.DateLayout, s)
}

type assignmentWire struct {
	model.TaskAssignment
	Task taskWire `json:"task"`
}

func (w assignmentWire) toModel() (model.TaskAssignment, error) {
	t, err := w.Task.toModel()
	if err != nil {
		return model.TaskAssignment{}, err
	}
	a := w.TaskAssignment
	a.Task = t
	return a, nil
}

type createTaskBody struct {
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	CoinValue         int            `json:"coinValue"`
	XPValue           int            `json:"xpValue"`
	Category          model.Category `json:"category"`
	ChildrenIDs       []string       `json:"childrenIds"`
	IsRecurring       bool           `json:"isRecurring,omitempty"`
	RecurrenceType    string         `json:"recurrenceType,omitempty"`
	RecurrenceDays    string         `json:"recurrenceDays,omitempty"`
	RecurrenceEndDate string         `json:"recurrenceEndDate,omitempty"`
}

func newCreateTaskBody(in model.NewTask) createTaskBody {
	b := createTaskBody{
		Title:       in.Title,
		Description: in.Description,
		CoinValue:   in.CoinValue,
		XPValue:     in.XPValue,
		Category:    in.Category,
		ChildrenIDs: in.ChildrenIDs,
	}
	if r := in.Recurrence; r != nil {
		b.IsRecurring = true
		b.RecurrenceType = string(r.Type)
		if r.Type == recurrence.Weekly {
			b.RecurrenceDays = r.Days.String()
		}
		if r.EndDate != nil {
			b.RecurrenceEndDate = r.EndDate.Format(recurrence.DateLayout)
		}
	}
	return b
}

type rejectBody struct {
	RejectionReason string `json:"rejectionReason"`
}

type amountBody struct {
	Amount int `json:"amount"`
}

type redemptionBody struct {
	RewardID string `json:"rewardId"`
}

package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/kidscoin/internal/recurrence"
)

type Category string

const (
	CategoryCleaning   Category = "LIMPEZA"
	CategoryOrganizing Category = "ORGANIZACAO"
	CategoryStudies    Category = "ESTUDOS"
	CategoryCare       Category = "CUIDADOS"
	CategoryOther      Category = "OUTRAS"
)

// Categories lists every category in form order.
var Categories = []Category{
	CategoryCleaning,
	CategoryOrganizing,
	CategoryStudies,
	CategoryCare,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryCleaning:   "Limpeza",
	CategoryOrganizing: "Organização",
	CategoryStudies:    "Estudos",
	CategoryCare:       "Cuidados",
	CategoryOther:      "Outras",
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

func (c Category) Label() string { return categoryLabels[c] }

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type TaskStatus string

const (
	TaskActive   TaskStatus = "ACTIVE"
	TaskInactive TaskStatus = "INACTIVE"
)

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch TaskStatus(raw) {
	case TaskActive, TaskInactive:
		*s = TaskStatus(raw)
		return nil
	}
	return fmt.Errorf("unknown task status: %q", raw)
}

// Task is the parent-owned template. Recurrence is nil for one-off tasks and
// is filled in by the gateway from the wire fields.
type Task struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	CoinValue     int              `json:"coinValue"`
	XPValue       int              `json:"xpValue"`
	Category      Category         `json:"category"`
	Status        TaskStatus       `json:"status"`
	FamilyID      string           `json:"familyId"`
	CreatedByName string           `json:"createdByName"`
	CreatedAt     time.Time        `json:"createdAt"`
	Recurrence    *recurrence.Rule `json:"-"`
}

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "PENDING"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentApproved  AssignmentStatus = "APPROVED"
	AssignmentRejected  AssignmentStatus = "REJECTED"
)

// AssignmentStatuses lists every status in the order actionable items are shown.
var AssignmentStatuses = []AssignmentStatus{
	AssignmentCompleted,
	AssignmentRejected,
	AssignmentPending,
	AssignmentApproved,
}

func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	switch AssignmentStatus(s) {
	case AssignmentPending, AssignmentCompleted, AssignmentApproved, AssignmentRejected:
		return AssignmentStatus(s), nil
	}
	return "", fmt.Errorf("unknown assignment status: %q", s)
}

func (s *AssignmentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseAssignmentStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s AssignmentStatus) Label() string {
	switch s {
	case AssignmentPending:
		return "Disponível"
	case AssignmentCompleted:
		return "Aguardando aprovação"
	case AssignmentApproved:
		return "Aprovada"
	case AssignmentRejected:
		return "Rejeitada"
	}
	return string(s)
}

// TaskAssignment binds one task occurrence to one child. The embedded Task
// is the snapshot taken when the assignment was generated.
type TaskAssignment struct {
	ID              string           `json:"id"`
	Task            Task             `json:"task"`
	ChildID         string           `json:"childId"`
	ChildName       string           `json:"childName"`
	Status          AssignmentStatus `json:"status"`
	CompletedAt     *time.Time       `json:"completedAt"`
	ApprovedAt      *time.Time       `json:"approvedAt"`
	ApprovedByName  string           `json:"approvedByName"`
	RejectionReason string           `json:"rejectionReason"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func (a TaskAssignment) CoinValue() int { return a.Task.CoinValue }
func (a TaskAssignment) XPValue() int   { return a.Task.XPValue }

package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
)

type Action string

const (
	ActionComplete Action = "complete"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionRetry    Action = "retry"
)

// assignmentTransitions is the whole assignment state machine. APPROVED has
// no outgoing edges.
var assignmentTransitions = map[model.AssignmentStatus]map[Action]model.AssignmentStatus{
	model.AssignmentPending: {
		ActionComplete: model.AssignmentCompleted,
	},
	model.AssignmentCompleted: {
		ActionApprove: model.AssignmentApproved,
		ActionReject:  model.AssignmentRejected,
	},
	model.AssignmentRejected: {
		ActionRetry: model.AssignmentPending,
	},
	model.AssignmentApproved: {},
}

// actionRoles says who may request each transition.
var actionRoles = map[Action]model.Role{
	ActionComplete: model.RoleChild,
	ActionRetry:    model.RoleChild,
	ActionApprove:  model.RoleParent,
	ActionReject:   model.RoleParent,
}

// NextAssignmentStatus returns the state action leads to from status, or a
// validation error when the edge does not exist.
func NextAssignmentStatus(status model.AssignmentStatus, action Action) (model.AssignmentStatus, error) {
	edges, ok := assignmentTransitions[status]
	if !ok {
		return "", apperr.Validation("Status de tarefa desconhecido: %s", status)
	}
	next, ok := edges[action]
	if !ok {
		return "", &TransitionError{From: string(status), Action: action}
	}
	return next, nil
}

func CanTransition(status model.AssignmentStatus, action Action) bool {
	_, err := NextAssignmentStatus(status, action)
	return err == nil
}

// AllowedActions lists what can be done from status, in a stable order.
func AllowedActions(status model.AssignmentStatus) []Action {
	var actions []Action
	for _, a := range []Action{ActionComplete, ActionApprove, ActionReject, ActionRetry} {
		if CanTransition(status, a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// AllowedActionsFor narrows AllowedActions to what role may request.
func AllowedActionsFor(status model.AssignmentStatus, role model.Role) []Action {
	var actions []Action
	for _, a := range AllowedActions(status) {
		if actionRoles[a] == role {
			actions = append(actions, a)
		}
	}
	return actions
}

// TransitionError is returned for an edge that is not in the state machine.
type TransitionError struct {
	From   string
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error {
	return apperr.Validation("Ação %q não permitida no status %s", e.Action, e.From)
}

// NormalizeReason trims a rejection reason and refuses a blank one.
func NormalizeReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", apperr.Validation("Informe o motivo da rejeição")
	}
	return trimmed, nil
}

var displayPriority = map[model.AssignmentStatus]int{
	model.AssignmentCompleted: 1,
	model.AssignmentRejected:  2,
	model.AssignmentPending:   3,
	model.AssignmentApproved:  4,
}

// SortForDisplay orders assignments so actionable ones come first:
// COMPLETED, REJECTED, PENDING, APPROVED. The input is not modified and the
// order within a status is preserved.
func SortForDisplay(list []model.TaskAssignment) []model.TaskAssignment {
	out := make([]model.TaskAssignment, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return priority(out[i].Status) < priority(out[j].Status)
	})
	return out
}

func priority(s model.AssignmentStatus) int {
	if p, ok := displayPriority[s]; ok {
		return p
	}
	return 999
}

// FilterByCategory keeps assignments whose task is in category. An empty
// category keeps everything.
func FilterByCategory(list []model.TaskAssignment, category model.Category) []model.TaskAssignment {
	if category == "" {
		return list
	}
	var out []model.TaskAssignment
	for _, a := range list {
		if a.Task.Category == category {
			out = append(out, a)
		}
	}
	return out
}

func FilterByStatus(list []model.TaskAssignment, status model.AssignmentStatus) []model.TaskAssignment {
	var out []model.TaskAssignment
	for _, a := range list {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

func findAssignment(list []model.TaskAssignment, id string) (model.TaskAssignment, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return model.TaskAssignment{}, false
}

package workflow

import "github.com/dukerupert/kidscoin/internal/model"

// StatusCounts tallies assignments per status.
type StatusCounts map[model.AssignmentStatus]int

func CountByStatus(list []model.TaskAssignment) StatusCounts {
	counts := make(StatusCounts)
	for _, a := range list {
		counts[a.Status]++
	}
	return counts
}

// NeedsApproval is the number of assignments waiting on a parent.
func (c StatusCounts) NeedsApproval() int { return c[model.AssignmentCompleted] }

// ChildSummary is one row of the parent dashboard.
type ChildSummary struct {
	Child     model.User
	Pending   int
	Completed int
	Approved  int
	Rejected  int
}

// SummarizeChildren builds per-child counts in the order children are given.
func SummarizeChildren(children []model.User, list []model.TaskAssignment) []ChildSummary {
	byChild := make(map[string][]model.TaskAssignment)
	for _, a := range list {
		byChild[a.ChildID] = append(byChild[a.ChildID], a)
	}
	out := make([]ChildSummary, 0, len(children))
	for _, c := range children {
		counts := CountByStatus(byChild[c.ID])
		out = append(out, ChildSummary{
			Child:     c,
			Pending:   counts[model.AssignmentPending],
			Completed: counts[model.AssignmentCompleted],
			Approved:  counts[model.AssignmentApproved],
			Rejected:  counts[model.AssignmentRejected],
		})
	}
	return out
}

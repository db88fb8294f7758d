package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
)

// ListAssignments returns the assignments visible to the actor: all of the
// family's for a parent, their own for a child.
func (c *Client) ListAssignments(ctx context.Context) ([]model.TaskAssignment, error) {
	var wire []assignmentWire
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, nil, &wire); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]model.TaskAssignment, 0, len(wire))
	for _, w := range wire {
		a, err := w.toModel()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindServer, "", fmt.Errorf("list tasks: %w", err))
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, in model.NewTask) (model.Task, error) {
	var wire taskWire
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, newCreateTaskBody(in), &wire); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	t, err := wire.toModel()
	if err != nil {
		return model.Task{}, apperr.Wrap(apperr.KindServer, "", fmt.Errorf("create task: %w", err))
	}
	return t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (c *Client) CompleteAssignment(ctx context.Context, id string) (model.TaskAssignment, error) {
	return c.assignmentAction(ctx, id, "complete", nil)
}

func (c *Client) ApproveAssignment(ctx context.Context, id string) (model.TaskAssignment, error) {
	return c.assignmentAction(ctx, id, "approve", nil)
}

func (c *Client) RejectAssignment(ctx context.Context, id, reason string) (model.TaskAssignment, error) {
	return c.assignmentAction(ctx, id, "reject", rejectBody{RejectionReason: reason})
}

func (c *Client) RetryAssignment(ctx context.Context, id string) (model.TaskAssignment, error) {
	return c.assignmentAction(ctx, id, "retry", nil)
}

func (c *Client) assignmentAction(ctx context.Context, id, action string, body any) (model.TaskAssignment, error) {
	var wire assignmentWire
	path := "/tasks/assignments/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, nil, body, &wire); err != nil {
		return model.TaskAssignment{}, fmt.Errorf("%s assignment: %w", action, err)
	}
	a, err := wire.toModel()
	if err != nil {
		return model.TaskAssignment{}, apperr.Wrap(apperr.KindServer, "", fmt.Errorf("%s assignment: %w", action, err))
	}
	return a, nil
}

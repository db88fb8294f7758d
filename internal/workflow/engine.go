// Package workflow mirrors the server's task and redemption state machines
// on the client. Every mutating call is checked against the state machine
// and the input guards before the gateway is touched, and every state the
// caller gets back comes from a server response.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/auth"
	"github.com/dukerupert/kidscoin/internal/model"
)

// Gateway is the remote API surface the engine drives.
type Gateway interface {
	ListAssignments(ctx context.Context) ([]model.TaskAssignment, error)
	CreateTask(ctx context.Context, in model.NewTask) (model.Task, error)
	CompleteAssignment(ctx context.Context, id string) (model.TaskAssignment, error)
	ApproveAssignment(ctx context.Context, id string) (model.TaskAssignment, error)
	RejectAssignment(ctx context.Context, id, reason string) (model.TaskAssignment, error)
	RetryAssignment(ctx context.Context, id string) (model.TaskAssignment, error)
	DeleteTask(ctx context.Context, id string) error

	ListRewards(ctx context.Context, activeOnly bool) ([]model.Reward, error)
	CreateReward(ctx context.Context, in model.NewReward) (model.Reward, error)
	ToggleReward(ctx context.Context, id string) (model.Reward, error)
	DeleteReward(ctx context.Context, id string) error

	ListRedemptions(ctx context.Context, status model.RedemptionStatus) ([]model.Redemption, error)
	RequestRedemption(ctx context.Context, rewardID string) (model.Redemption, error)
	ApproveRedemption(ctx context.Context, id string) (model.Redemption, error)
	RejectRedemption(ctx context.Context, id, reason string) (model.Redemption, error)

	GetWallet(ctx context.Context) (model.Wallet, error)
	GetSavings(ctx context.Context) (model.Savings, error)
	DepositSavings(ctx context.Context, amount int) (model.Savings, error)
	WithdrawSavings(ctx context.Context, amount int) (model.Savings, error)
	GetGamification(ctx context.Context) (model.Gamification, error)

	ListChildren(ctx context.Context) ([]model.User, error)
	CreateChild(ctx context.Context, in model.NewChild) (model.User, error)
	DeleteChild(ctx context.Context, id string) error
}

// Engine is safe for concurrent use. It keeps no state between calls, so two
// in-flight requests against the same entity both reach the server.
type Engine struct {
	gw     Gateway
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(gw Gateway, logger *slog.Logger) *Engine {
	return &Engine{
		gw:     gw,
		logger: logger,
		now:    time.Now,
	}
}

// actor returns the acting user from ctx, requiring role when one is given.
func actor(ctx context.Context, role model.Role) (auth.Actor, error) {
	a, ok := auth.FromContext(ctx)
	if !ok || a.Token == "" {
		return auth.Actor{}, apperr.New(apperr.KindAuthentication, "Faça login para continuar")
	}
	if role != "" && a.Role != role {
		if role == model.RoleParent {
			return auth.Actor{}, apperr.New(apperr.KindForbidden, "Apenas pais podem realizar esta ação")
		}
		return auth.Actor{}, apperr.New(apperr.KindForbidden, "Apenas crianças podem realizar esta ação")
	}
	return a, nil
}

// settle drops a response whose caller has gone away.
func settle(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	return ctx.Err()
}

// ListAssignments returns the actor's assignments as the server sees them.
func (e *Engine) ListAssignments(ctx context.Context) ([]model.TaskAssignment, error) {
	if _, err := actor(ctx, ""); err != nil {
		return nil, err
	}
	list, err := e.gw.ListAssignments(ctx)
	if err := settle(ctx, err); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return list, nil
}

// Complete marks a PENDING assignment done.
func (e *Engine) Complete(ctx context.Context, a model.TaskAssignment) (model.TaskAssignment, error) {
	return e.transition(ctx, a, ActionComplete, func() (model.TaskAssignment, error) {
		return e.gw.CompleteAssignment(ctx, a.ID)
	})
}

// Approve credits a COMPLETED assignment. Coins and XP move server-side.
func (e *Engine) Approve(ctx context.Context, a model.TaskAssignment) (model.TaskAssignment, error) {
	return e.transition(ctx, a, ActionApprove, func() (model.TaskAssignment, error) {
		return e.gw.ApproveAssignment(ctx, a.ID)
	})
}

// Reject sends a COMPLETED assignment back with a mandatory reason.
func (e *Engine) Reject(ctx context.Context, a model.TaskAssignment, reason string) (model.TaskAssignment, error) {
	trimmed, err := NormalizeReason(reason)
	if err != nil {
		return model.TaskAssignment{}, err
	}
	return e.transition(ctx, a, ActionReject, func() (model.TaskAssignment, error) {
		return e.gw.RejectAssignment(ctx, a.ID, trimmed)
	})
}

// Retry reopens a REJECTED assignment.
func (e *Engine) Retry(ctx context.Context, a model.TaskAssignment) (model.TaskAssignment, error) {
	return e.transition(ctx, a, ActionRetry, func() (model.TaskAssignment, error) {
		return e.gw.RetryAssignment(ctx, a.ID)
	})
}

func (e *Engine) transition(ctx context.Context, a model.TaskAssignment, action Action, call func() (model.TaskAssignment, error)) (model.TaskAssignment, error) {
	if _, err := actor(ctx, actionRoles[action]); err != nil {
		return model.TaskAssignment{}, err
	}
	want, err := NextAssignmentStatus(a.Status, action)
	if err != nil {
		return model.TaskAssignment{}, err
	}

	got, err := call()
	if err := settle(ctx, err); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return e.reconcileAssignment(ctx, a.ID, action, err)
		}
		return model.TaskAssignment{}, fmt.Errorf("%s assignment %s: %w", action, a.ID, err)
	}
	if got.Status != want {
		e.logger.Warn("server settled assignment in unexpected state",
			"assignment_id", a.ID, "action", action, "want", want, "got", got.Status)
	}
	return got, nil
}

// reconcileAssignment re-fetches canonical state after a conflict. It
// returns the server's copy alongside the conflict so the caller can show it
// as informational.
func (e *Engine) reconcileAssignment(ctx context.Context, id string, action Action, conflict error) (model.TaskAssignment, error) {
	e.logger.Info("assignment changed on server, reconciling", "assignment_id", id, "action", action, "error", conflict)
	list, err := e.gw.ListAssignments(ctx)
	if err := settle(ctx, err); err != nil {
		e.logger.Warn("reconcile assignment", "assignment_id", id, "error", err)
		return model.TaskAssignment{}, fmt.Errorf("%s assignment %s: %w", action, id, conflict)
	}
	current, _ := findAssignment(list, id)
	return current, fmt.Errorf("%s assignment %s: %w", action, id, conflict)
}

// CreateTask validates and submits a new task for one or more children.
func (e *Engine) CreateTask(ctx context.Context, in model.NewTask) (model.Task, error) {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return model.Task{}, err
	}
	in, err := PrepareTask(in)
	if err != nil {
		return model.Task{}, err
	}
	task, err := e.gw.CreateTask(ctx, in)
	if err := settle(ctx, err); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (e *Engine) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return err
	}
	if err := settle(ctx, e.gw.DeleteTask(ctx, taskID)); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	return nil
}

// Rewards lists the family's rewards; children only see active ones.
func (e *Engine) Rewards(ctx context.Context) ([]model.Reward, error) {
	a, err := actor(ctx, "")
	if err != nil {
		return nil, err
	}
	list, err := e.gw.ListRewards(ctx, a.Role == model.RoleChild)
	if err := settle(ctx, err); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return list, nil
}

func (e *Engine) CreateReward(ctx context.Context, in model.NewReward) (model.Reward, error) {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return model.Reward{}, err
	}
	in, err := PrepareReward(in)
	if err != nil {
		return model.Reward{}, err
	}
	r, err := e.gw.CreateReward(ctx, in)
	if err := settle(ctx, err); err != nil {
		return model.Reward{}, fmt.Errorf("create reward: %w", err)
	}
	return r, nil
}

// ToggleReward flips isActive; this is the soft-disable path.
func (e *Engine) ToggleReward(ctx context.Context, rewardID string) (model.Reward, error) {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return model.Reward{}, err
	}
	r, err := e.gw.ToggleReward(ctx, rewardID)
	if err := settle(ctx, err); err != nil {
		return model.Reward{}, fmt.Errorf("toggle reward %s: %w", rewardID, err)
	}
	return r, nil
}

// DeleteReward hard-deletes a reward together with its redemption history.
// It cannot be undone.
func (e *Engine) DeleteReward(ctx context.Context, rewardID string) error {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return err
	}
	if err := settle(ctx, e.gw.DeleteReward(ctx, rewardID)); err != nil {
		return fmt.Errorf("delete reward %s: %w", rewardID, err)
	}
	return nil
}

// Redemptions lists redemptions, optionally filtered by status ("" = all).
func (e *Engine) Redemptions(ctx context.Context, status model.RedemptionStatus) ([]model.Redemption, error) {
	if _, err := actor(ctx, ""); err != nil {
		return nil, err
	}
	list, err := e.gw.ListRedemptions(ctx, status)
	if err := settle(ctx, err); err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	return list, nil
}

// RequestRedemption asks to spend coins on reward. wallet is the balance the
// child is looking at; a shortfall blocks the request locally.
func (e *Engine) RequestRedemption(ctx context.Context, reward model.Reward, wallet model.Wallet) (model.Redemption, error) {
	if _, err := actor(ctx, model.RoleChild); err != nil {
		return model.Redemption{}, err
	}
	if err := CheckRedemption(reward, wallet); err != nil {
		return model.Redemption{}, err
	}
	r, err := e.gw.RequestRedemption(ctx, reward.ID)
	if err := settle(ctx, err); err != nil {
		return model.Redemption{}, fmt.Errorf("request redemption of %s: %w", reward.ID, err)
	}
	return r, nil
}

func (e *Engine) ApproveRedemption(ctx context.Context, r model.Redemption) (model.Redemption, error) {
	return e.settleRedemption(ctx, r, ActionApprove, func() (model.Redemption, error) {
		return e.gw.ApproveRedemption(ctx, r.ID)
	})
}

func (e *Engine) RejectRedemption(ctx context.Context, r model.Redemption, reason string) (model.Redemption, error) {
	trimmed, err := NormalizeReason(reason)
	if err != nil {
		return model.Redemption{}, err
	}
	return e.settleRedemption(ctx, r, ActionReject, func() (model.Redemption, error) {
		return e.gw.RejectRedemption(ctx, r.ID, trimmed)
	})
}

func (e *Engine) settleRedemption(ctx context.Context, r model.Redemption, action Action, call func() (model.Redemption, error)) (model.Redemption, error) {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return model.Redemption{}, err
	}
	if _, err := NextRedemptionStatus(r.Status, action); err != nil {
		return model.Redemption{}, err
	}

	got, err := call()
	if err := settle(ctx, err); err != nil {
		if !apperr.IsKind(err, apperr.KindConflict) {
			return model.Redemption{}, fmt.Errorf("%s redemption %s: %w", action, r.ID, err)
		}
		e.logger.Info("redemption changed on server, reconciling", "redemption_id", r.ID, "action", action, "error", err)
		list, lerr := e.gw.ListRedemptions(ctx, "")
		if lerr := settle(ctx, lerr); lerr != nil {
			e.logger.Warn("reconcile redemption", "redemption_id", r.ID, "error", lerr)
			return model.Redemption{}, fmt.Errorf("%s redemption %s: %w", action, r.ID, err)
		}
		current, _ := findRedemption(list, r.ID)
		return current, fmt.Errorf("%s redemption %s: %w", action, r.ID, err)
	}
	return got, nil
}

func (e *Engine) Wallet(ctx context.Context) (model.Wallet, error) {
	if _, err := actor(ctx, ""); err != nil {
		return model.Wallet{}, err
	}
	w, err := e.gw.GetWallet(ctx)
	if err := settle(ctx, err); err != nil {
		return model.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

func (e *Engine) Gamification(ctx context.Context) (model.Gamification, error) {
	if _, err := actor(ctx, model.RoleChild); err != nil {
		return model.Gamification{}, err
	}
	g, err := e.gw.GetGamification(ctx)
	if err := settle(ctx, err); err != nil {
		return model.Gamification{}, fmt.Errorf("get gamification: %w", err)
	}
	return g, nil
}

func (e *Engine) Children(ctx context.Context) ([]model.User, error) {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return nil, err
	}
	list, err := e.gw.ListChildren(ctx)
	if err := settle(ctx, err); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return list, nil
}

func (e *Engine) CreateChild(ctx context.Context, in model.NewChild) (model.User, error) {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return model.User{}, err
	}
	in, err := PrepareChild(in)
	if err != nil {
		return model.User{}, err
	}
	u, err := e.gw.CreateChild(ctx, in)
	if err := settle(ctx, err); err != nil {
		return model.User{}, fmt.Errorf("create child: %w", err)
	}
	return u, nil
}

// DeleteChild removes a child. The server cascades to everything the child owns.
func (e *Engine) DeleteChild(ctx context.Context, childID string) error {
	if _, err := actor(ctx, model.RoleParent); err != nil {
		return err
	}
	if err := settle(ctx, e.gw.DeleteChild(ctx, childID)); err != nil {
		return fmt.Errorf("delete child %s: %w", childID, err)
	}
	return nil
}

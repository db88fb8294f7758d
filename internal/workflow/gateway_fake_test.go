package workflow

import (
	"context"
	"sync"

	"github.com/dukerupert/kidscoin/internal/model"
)

// fakeGateway is an in-memory server stand-in. It records every call so
// tests can assert that guarded actions never reach it.
type fakeGateway struct {
	mu    sync.Mutex
	calls []string
	err   error

	assignments map[string]model.TaskAssignment
	redemptions map[string]model.Redemption
	wallet      model.Wallet
	savings     model.Savings
	walletErr   error
	created     []model.NewTask
	rejectWith  string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		assignments: make(map[string]model.TaskAssignment),
		redemptions: make(map[string]model.Redemption),
	}
}

func (f *fakeGateway) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) setStatus(id string, s model.AssignmentStatus) model.TaskAssignment {
	a := f.assignments[id]
	a.Status = s
	if s == model.AssignmentPending {
		a.RejectionReason = ""
	}
	f.assignments[id] = a
	return a
}

func (f *fakeGateway) ListAssignments(ctx context.Context) ([]model.TaskAssignment, error) {
	if err := f.record("ListAssignments"); err != nil {
		return nil, err
	}
	var out []model.TaskAssignment
	for _, a := range f.assignments {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeGateway) CreateTask(ctx context.Context, in model.NewTask) (model.Task, error) {
	if err := f.record("CreateTask"); err != nil {
		return model.Task{}, err
	}
	f.created = append(f.created, in)
	return model.Task{ID: "t-new", Title: in.Title, CoinValue: in.CoinValue, XPValue: in.XPValue, Category: in.Category, Recurrence: in.Recurrence}, nil
}

func (f *fakeGateway) CompleteAssignment(ctx context.Context, id string) (model.TaskAssignment, error) {
	if err := f.record("CompleteAssignment"); err != nil {
		return model.TaskAssignment{}, err
	}
	return f.setStatus(id, model.AssignmentCompleted), nil
}

func (f *fakeGateway) ApproveAssignment(ctx context.Context, id string) (model.TaskAssignment, error) {
	if err := f.record("ApproveAssignment"); err != nil {
		return model.TaskAssignment{}, err
	}
	return f.setStatus(id, model.AssignmentApproved), nil
}

func (f *fakeGateway) RejectAssignment(ctx context.Context, id, reason string) (model.TaskAssignment, error) {
	if err := f.record("RejectAssignment"); err != nil {
		return model.TaskAssignment{}, err
	}
	f.rejectWith = reason
	a := f.setStatus(id, model.AssignmentRejected)
	a.RejectionReason = reason
	f.assignments[id] = a
	return a, nil
}

func (f *fakeGateway) RetryAssignment(ctx context.Context, id string) (model.TaskAssignment, error) {
	if err := f.record("RetryAssignment"); err != nil {
		return model.TaskAssignment{}, err
	}
	return f.setStatus(id, model.AssignmentPending), nil
}

func (f *fakeGateway) DeleteTask(ctx context.Context, id string) error {
	return f.record("DeleteTask")
}

func (f *fakeGateway) ListRewards(ctx context.Context, activeOnly bool) ([]model.Reward, error) {
	if activeOnly {
		return nil, f.record("ListRewards(active)")
	}
	return nil, f.record("ListRewards")
}

func (f *fakeGateway) CreateReward(ctx context.Context, in model.NewReward) (model.Reward, error) {
	if err := f.record("CreateReward"); err != nil {
		return model.Reward{}, err
	}
	return model.Reward{ID: "r-new", Name: in.Name, CoinCost: in.CoinCost, IsActive: true}, nil
}

func (f *fakeGateway) ToggleReward(ctx context.Context, id string) (model.Reward, error) {
	return model.Reward{ID: id}, f.record("ToggleReward")
}

func (f *fakeGateway) DeleteReward(ctx context.Context, id string) error {
	return f.record("DeleteReward")
}

func (f *fakeGateway) ListRedemptions(ctx context.Context, status model.RedemptionStatus) ([]model.Redemption, error) {
	if err := f.record("ListRedemptions"); err != nil {
		return nil, err
	}
	var out []model.Redemption
	for _, r := range f.redemptions {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeGateway) RequestRedemption(ctx context.Context, rewardID string) (model.Redemption, error) {
	if err := f.record("RequestRedemption"); err != nil {
		return model.Redemption{}, err
	}
	r := model.Redemption{ID: "rd-new", Reward: model.Reward{ID: rewardID}, Status: model.RedemptionPending}
	f.redemptions[r.ID] = r
	return r, nil
}

func (f *fakeGateway) ApproveRedemption(ctx context.Context, id string) (model.Redemption, error) {
	if err := f.record("ApproveRedemption"); err != nil {
		return model.Redemption{}, err
	}
	r := f.redemptions[id]
	r.Status = model.RedemptionApproved
	f.redemptions[id] = r
	return r, nil
}

func (f *fakeGateway) RejectRedemption(ctx context.Context, id, reason string) (model.Redemption, error) {
	if err := f.record("RejectRedemption"); err != nil {
		return model.Redemption{}, err
	}
	r := f.redemptions[id]
	r.Status = model.RedemptionRejected
	r.RejectionReason = reason
	f.redemptions[id] = r
	return r, nil
}

func (f *fakeGateway) GetWallet(ctx context.Context) (model.Wallet, error) {
	if err := f.record("GetWallet"); err != nil {
		return model.Wallet{}, err
	}
	if f.walletErr != nil {
		return model.Wallet{}, f.walletErr
	}
	return f.wallet, nil
}

func (f *fakeGateway) GetSavings(ctx context.Context) (model.Savings, error) {
	return f.savings, f.record("GetSavings")
}

func (f *fakeGateway) DepositSavings(ctx context.Context, amount int) (model.Savings, error) {
	if err := f.record("DepositSavings"); err != nil {
		return model.Savings{}, err
	}
	f.wallet.Balance -= amount
	f.savings.Balance += amount
	f.savings.TotalDeposited += amount
	return f.savings, nil
}

func (f *fakeGateway) WithdrawSavings(ctx context.Context, amount int) (model.Savings, error) {
	if err := f.record("WithdrawSavings"); err != nil {
		return model.Savings{}, err
	}
	f.savings.Balance -= amount
	f.wallet.Balance += amount
	return f.savings, nil
}

func (f *fakeGateway) GetGamification(ctx context.Context) (model.Gamification, error) {
	return model.Gamification{}, f.record("GetGamification")
}

func (f *fakeGateway) ListChildren(ctx context.Context) ([]model.User, error) {
	return nil, f.record("ListChildren")
}

func (f *fakeGateway) CreateChild(ctx context.Context, in model.NewChild) (model.User, error) {
	if err := f.record("CreateChild"); err != nil {
		return model.User{}, err
	}
	return model.User{ID: "c-new", FullName: in.FullName, Username: in.Username, Role: model.RoleChild}, nil
}

func (f *fakeGateway) DeleteChild(ctx context.Context, id string) error {
	return f.record("DeleteChild")
}

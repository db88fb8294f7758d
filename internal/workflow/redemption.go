package workflow

import (
	"fmt"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
)

// Redemptions only leave PENDING; both outcomes are final.
var redemptionTransitions = map[model.RedemptionStatus]map[Action]model.RedemptionStatus{
	model.RedemptionPending: {
		ActionApprove: model.RedemptionApproved,
		ActionReject:  model.RedemptionRejected,
	},
	model.RedemptionApproved: {},
	model.RedemptionRejected: {},
}

func NextRedemptionStatus(status model.RedemptionStatus, action Action) (model.RedemptionStatus, error) {
	edges, ok := redemptionTransitions[status]
	if !ok {
		return "", apperr.Validation("Status de resgate desconhecido: %s", status)
	}
	next, ok := edges[action]
	if !ok {
		return "", &TransitionError{From: string(status), Action: action}
	}
	return next, nil
}

// Shortfall is how many coins are missing to afford reward; 0 when affordable.
func Shortfall(reward model.Reward, wallet model.Wallet) int {
	if reward.CoinCost <= wallet.Balance {
		return 0
	}
	return reward.CoinCost - wallet.Balance
}

// InsufficientFundsError blocks a redemption request the wallet cannot cover.
type InsufficientFundsError struct {
	Cost      int
	Balance   int
	Shortfall int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Balance, e.Cost)
}

func (e *InsufficientFundsError) Unwrap() error {
	return apperr.Validation("Você não tem moedas suficientes! Faltam %d moedas", e.Shortfall)
}

// CheckRedemption is the pre-submission guard for a redemption request. The
// server re-checks the balance at approval time.
func CheckRedemption(reward model.Reward, wallet model.Wallet) error {
	if !reward.IsActive {
		return apperr.Validation("Esta recompensa não está disponível")
	}
	if s := Shortfall(reward, wallet); s > 0 {
		return &InsufficientFundsError{Cost: reward.CoinCost, Balance: wallet.Balance, Shortfall: s}
	}
	return nil
}

func findRedemption(list []model.Redemption, id string) (model.Redemption, bool) {
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return model.Redemption{}, false
}

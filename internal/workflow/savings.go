package workflow

import (
	"context"
	"fmt"

	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/savings"
)

// Balances is the server's view of both accounts after a savings move.
// WalletFresh is false when the wallet re-fetch failed; Wallet then holds the
// figures the caller passed in and must not be shown as current.
type Balances struct {
	Wallet      model.Wallet
	Savings     model.Savings
	WalletFresh bool
}

func (e *Engine) Savings(ctx context.Context) (model.Savings, error) {
	if _, err := actor(ctx, model.RoleChild); err != nil {
		return model.Savings{}, err
	}
	s, err := e.gw.GetSavings(ctx)
	if err := settle(ctx, err); err != nil {
		return model.Savings{}, fmt.Errorf("get savings: %w", err)
	}
	return s, nil
}

// Deposit moves amount from the wallet into savings.
func (e *Engine) Deposit(ctx context.Context, amount int, wallet model.Wallet) (Balances, error) {
	if _, err := actor(ctx, model.RoleChild); err != nil {
		return Balances{}, err
	}
	if err := savings.ValidateDeposit(amount, wallet); err != nil {
		return Balances{}, err
	}
	acct, err := e.gw.DepositSavings(ctx, amount)
	if err := settle(ctx, err); err != nil {
		return Balances{}, fmt.Errorf("deposit %d: %w", amount, err)
	}
	return e.withWallet(ctx, acct, wallet), nil
}

// Withdraw moves amount out of savings; the server adds the time bonus.
func (e *Engine) Withdraw(ctx context.Context, amount int, acct model.Savings, wallet model.Wallet) (Balances, error) {
	if _, err := actor(ctx, model.RoleChild); err != nil {
		return Balances{}, err
	}
	if err := savings.ValidateWithdrawal(amount, acct); err != nil {
		return Balances{}, err
	}
	updated, err := e.gw.WithdrawSavings(ctx, amount)
	if err := settle(ctx, err); err != nil {
		return Balances{}, fmt.Errorf("withdraw %d: %w", amount, err)
	}
	return e.withWallet(ctx, updated, wallet), nil
}

// withWallet pairs the savings response with a freshly fetched wallet
// instead of adjusting the old balance locally.
func (e *Engine) withWallet(ctx context.Context, acct model.Savings, stale model.Wallet) Balances {
	w, err := e.gw.GetWallet(ctx)
	if err := settle(ctx, err); err != nil {
		e.logger.Warn("refresh wallet after savings move", "error", err)
		return Balances{Wallet: stale, Savings: acct}
	}
	return Balances{Wallet: w, Savings: acct, WalletFresh: true}
}

// PreviewDeposit is the non-persisted projection shown before confirming.
func (e *Engine) PreviewDeposit(amount int, wallet model.Wallet, acct model.Savings) savings.Preview {
	return savings.PreviewDeposit(amount, wallet, acct, e.now())
}

func (e *Engine) PreviewWithdraw(amount int, wallet model.Wallet, acct model.Savings) savings.Preview {
	return savings.PreviewWithdraw(amount, wallet, acct, e.now())
}

// TimeBonusPercent is the bonus a withdrawal made now would earn.
func (e *Engine) TimeBonusPercent(acct model.Savings) int {
	return savings.TimeBonusPercent(acct.LastDepositAt, e.now())
}

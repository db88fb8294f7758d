package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dukerupert/kidscoin/internal/model"
)

func (c *Client) GetWallet(ctx context.Context) (model.Wallet, error) {
	var w model.Wallet
	if err := c.do(ctx, http.MethodGet, "/wallet", nil, nil, &w); err != nil {
		return model.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

func (c *Client) GetSavings(ctx context.Context) (model.Savings, error) {
	var s model.Savings
	if err := c.do(ctx, http.MethodGet, "/savings", nil, nil, &s); err != nil {
		return model.Savings{}, fmt.Errorf("get savings: %w", err)
	}
	return s, nil
}

func (c *Client) DepositSavings(ctx context.Context, amount int) (model.Savings, error) {
	var s model.Savings
	if err := c.do(ctx, http.MethodPost, "/savings/deposit", nil, amountBody{Amount: amount}, &s); err != nil {
		return model.Savings{}, fmt.Errorf("deposit savings: %w", err)
	}
	return s, nil
}

// WithdrawSavings returns the savings account after the move. The time bonus
// is applied server-side and lands in the wallet.
func (c *Client) WithdrawSavings(ctx context.Context, amount int) (model.Savings, error) {
	var s model.Savings
	if err := c.do(ctx, http.MethodPost, "/savings/withdraw", nil, amountBody{Amount: amount}, &s); err != nil {
		return model.Savings{}, fmt.Errorf("withdraw savings: %w", err)
	}
	return s, nil
}

func (c *Client) GetGamification(ctx context.Context) (model.Gamification, error) {
	var g model.Gamification
	if err := c.do(ctx, http.MethodGet, "/gamification", nil, nil, &g); err != nil {
		return model.Gamification{}, fmt.Errorf("get gamification: %w", err)
	}
	return g, nil
}

func (c *Client) ListChildren(ctx context.Context) ([]model.User, error) {
	var list []model.User
	if err := c.do(ctx, http.MethodGet, "/users/children", nil, nil, &list); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return list, nil
}

func (c *Client) CreateChild(ctx context.Context, in model.NewChild) (model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPost, "/users/children", nil, in, &u); err != nil {
		return model.User{}, fmt.Errorf("create child: %w", err)
	}
	return u, nil
}

func (c *Client) DeleteChild(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/users/children/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return nil
}

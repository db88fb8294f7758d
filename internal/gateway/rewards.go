package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dukerupert/kidscoin/internal/model"
)

func (c *Client) ListRewards(ctx context.Context, activeOnly bool) ([]model.Reward, error) {
	var q url.Values
	if activeOnly {
		q = url.Values{"activeOnly": {"true"}}
	}
	var list []model.Reward
	if err := c.do(ctx, http.MethodGet, "/rewards", q, nil, &list); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return list, nil
}

func (c *Client) CreateReward(ctx context.Context, in model.NewReward) (model.Reward, error) {
	var r model.Reward
	if err := c.do(ctx, http.MethodPost, "/rewards", nil, in, &r); err != nil {
		return model.Reward{}, fmt.Errorf("create reward: %w", err)
	}
	return r, nil
}

func (c *Client) ToggleReward(ctx context.Context, id string) (model.Reward, error) {
	var r model.Reward
	if err := c.do(ctx, http.MethodPatch, "/rewards/"+url.PathEscape(id)+"/toggle", nil, nil, &r); err != nil {
		return model.Reward{}, fmt.Errorf("toggle reward: %w", err)
	}
	return r, nil
}

func (c *Client) DeleteReward(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/rewards/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return nil
}

// ListRedemptions filters by status unless status is empty.
func (c *Client) ListRedemptions(ctx context.Context, status model.RedemptionStatus) ([]model.Redemption, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {string(status)}}
	}
	var list []model.Redemption
	if err := c.do(ctx, http.MethodGet, "/redemptions", q, nil, &list); err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	return list, nil
}

func (c *Client) RequestRedemption(ctx context.Context, rewardID string) (model.Redemption, error) {
	var r model.Redemption
	if err := c.do(ctx, http.MethodPost, "/redemptions", nil, redemptionBody{RewardID: rewardID}, &r); err != nil {
		return model.Redemption{}, fmt.Errorf("request redemption: %w", err)
	}
	return r, nil
}

func (c *Client) ApproveRedemption(ctx context.Context, id string) (model.Redemption, error) {
	var r model.Redemption
	if err := c.do(ctx, http.MethodPost, "/redemptions/"+url.PathEscape(id)+"/approve", nil, nil, &r); err != nil {
		return model.Redemption{}, fmt.Errorf("approve redemption: %w", err)
	}
	return r, nil
}

func (c *Client) RejectRedemption(ctx context.Context, id, reason string) (model.Redemption, error) {
	var r model.Redemption
	body := rejectBody{RejectionReason: reason}
	if err := c.do(ctx, http.MethodPost, "/redemptions/"+url.PathEscape(id)+"/reject", nil, body, &r); err != nil {
		return model.Redemption{}, fmt.Errorf("reject redemption: %w", err)
	}
	return r, nil
}

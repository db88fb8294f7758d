package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dukerupert/kidscoin/internal/model"
)

func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return model.AuthResponse{}, fmt.Errorf("login: %w", err)
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, in model.Registration) (model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &resp); err != nil {
		return model.AuthResponse{}, fmt.Errorf("register: %w", err)
	}
	return resp, nil
}

// Me fetches the user the bearer token belongs to.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return model.User{}, fmt.Errorf("fetch self: %w", err)
	}
	return u, nil
}

// Logout tells the server to drop the session's tokens.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Package gateway talks to the kidscoin JSON API. Every call carries the
// bearer token of the actor in its context, and every failure comes back as
// an *apperr.Error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/auth"
)

const defaultTimeout = 10 * time.Second

// Config holds the remote API settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	logger = logger.With("component", "gateway")
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &logTransport{next: http.DefaultTransport, logger: logger},
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends one request. in is encoded as the JSON body when non-nil; out
// receives the decoded response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "", fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return apperr.Wrap(apperr.KindNetwork, "", fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := auth.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperr.Wrap(apperr.KindNetwork, "", fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := responseError(resp)
		c.logger.Debug("request rejected", "request_id", requestID, "error", apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Wrap(apperr.KindServer, "", fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// responseError classifies a non-2xx response, keeping the server's own
// message when the body carries one.
func responseError(resp *http.Response) *apperr.Error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	return &apperr.Error{
		Kind:    kindForStatus(resp.StatusCode),
		Message: msg,
		Status:  resp.StatusCode,
		Err:     fmt.Errorf("status %d", resp.StatusCode),
	}
}

func kindForStatus(status int) apperr.Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperr.KindValidation
	case status == http.StatusUnauthorized:
		return apperr.KindAuthentication
	case status == http.StatusForbidden:
		return apperr.KindForbidden
	case status == http.StatusNotFound:
		return apperr.KindNotFound
	case status == http.StatusConflict:
		return apperr.KindConflict
	case status >= 400:
		// 5xx and the 4xx codes with no client-side meaning (405, 429, ...).
		return apperr.KindServer
	}
	return apperr.KindUnknown
}

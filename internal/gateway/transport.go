package gateway

import (
	"log/slog"
	"net/http"
	"time"
)

// logTransport logs each round trip with method, path, status, duration and
// request ID. Server errors log at error and client errors at warn.
type logTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", req.Header.Get("X-Request-ID")),
	}
	if err != nil {
		if req.Context().Err() == nil {
			t.logger.LogAttrs(req.Context(), slog.LevelWarn, "request failed", append(attrs, slog.Any("error", err))...)
		}
		return nil, err
	}

	attrs = append(attrs, slog.Int("status", resp.StatusCode))
	switch {
	case resp.StatusCode >= 500:
		t.logger.LogAttrs(req.Context(), slog.LevelError, "request", attrs...)
	case resp.StatusCode >= 400:
		t.logger.LogAttrs(req.Context(), slog.LevelWarn, "request", attrs...)
	default:
		t.logger.LogAttrs(req.Context(), slog.LevelDebug, "request", attrs...)
	}
	return resp, nil
}

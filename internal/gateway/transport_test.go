package gateway

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogTransportLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=DEBUG"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		client := &http.Client{Transport: &logTransport{next: http.DefaultTransport, logger: logger}}

		req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/wallet", nil)
		req.Header.Set("X-Request-ID", "req-1")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		resp.Body.Close()
		server.Close()

		out := buf.String()
		for _, want := range []string{tt.level, "path=/api/wallet", "request_id=req-1"} {
			if !strings.Contains(out, want) {
				t.Errorf("status %d: log %q missing %q", tt.status, out, want)
			}
		}
	}
}

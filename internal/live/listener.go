// Package live receives change notifications from the server over a
// WebSocket and fans them out to local subscribers.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
)

const pingInterval = 30 * time.Second

// Listener holds one connection to the live endpoint. It does not reconnect:
// Listen returns when the connection or ctx ends.
type Listener struct {
	url    string
	hub    *Hub
	logger *slog.Logger
}

func NewListener(url string, hub *Hub, logger *slog.Logger) *Listener {
	return &Listener{
		url:    url,
		hub:    hub,
		logger: logger.With("component", "live"),
	}
}

// Listen dials with token as bearer credential and broadcasts every message
// until the connection closes. A normal close or cancelled ctx returns nil.
func (l *Listener) Listen(ctx context.Context, token string) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := ws.Dial(ctx, l.url, &ws.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("dial %s: %w", l.url, err)
	}
	defer conn.CloseNow()
	l.logger.Info("connected", "url", l.url, "subscribers", l.hub.SubscriberCount())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go l.pingPump(ctx, conn)
	err = l.readPump(ctx, conn)
	if ctx.Err() != nil {
		conn.Close(ws.StatusNormalClosure, "")
		return nil
	}
	return err
}

func (l *Listener) readPump(ctx context.Context, conn *ws.Conn) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if ws.CloseStatus(err) == ws.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if typ != ws.MessageText {
			continue
		}
		msg, err := decode(data)
		if err != nil {
			l.logger.Warn("skipping message", "error", err)
			continue
		}
		l.logger.Debug("change received", "type", msg.Type, "id", msg.ID)
		l.hub.Broadcast(msg)
	}
}

// pingPump sends periodic pings to detect stale connections.
func (l *Listener) pingPump(ctx context.Context, conn *ws.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

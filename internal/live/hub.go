package live

import (
	"log/slog"
	"sync"
)

const subscriptionBuffer = 16

// Subscription receives the messages for the entities it asked for.
type Subscription struct {
	C        <-chan Message
	ch       chan Message
	entities map[string]struct{}
}

func (s *Subscription) wants(entity string) bool {
	if len(s.entities) == 0 {
		return true
	}
	_, ok := s.entities[entity]
	return ok
}

// Hub fans messages from one connection out to local subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers interest in entities; none means all of them.
func (h *Hub) Subscribe(entities ...string) *Subscription {
	ch := make(chan Message, subscriptionBuffer)
	s := &Subscription{C: ch, ch: ch, entities: make(map[string]struct{}, len(entities))}
	for _, e := range entities {
		s.entities[e] = struct{}{}
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe removes s and closes its channel.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers msg to every interested subscriber without blocking.
// A subscriber whose buffer is full misses the message; its next refresh
// picks the change up anyway.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if !s.wants(msg.Entity) {
			continue
		}
		select {
		case s.ch <- msg:
		default:
			h.logger.Debug("subscriber buffer full, dropping message", "type", msg.Type)
		}
	}
}

// Close unsubscribes everyone.
func (h *Hub) Close() {
	h.mu.Lock()
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
	h.mu.Unlock()
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ABOUTME: In-memory fan-out hub for spectator event delivery
// ABOUTME: Publishes arena events to all subscribers without blocking game flow

package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	// Slow spectators drop events past this point rather than stall play.
	subscriberBufferSize = 64
)

// Event is a single spectator-visible arena occurrence. Type names the
// occurrence (match_start, move_made, match_end, queue_update and so on)
// and Data carries its payload.
type Event struct {
	Type string
	Data map[string]any
}

// MarshalJSON flattens Type into the payload so spectators receive a
// single flat object with a "type" key.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		out[k] = v
	}
	out["type"] = e.Type
	return json.Marshal(out)
}

// Hub provides in-memory pub/sub for arena events. Every subscriber sees
// every published event. This enables live spectating without polling.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event // subID -> ch
	logger      *slog.Logger
}

// New creates a hub. Pass nil logger for default.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[string]chan Event),
		logger:      logger.With("component", "hub"),
	}
}

// Subscribe registers a spectator. Returns a channel that receives events
// and a subscription ID for later unsubscription. The subscription is
// automatically cleaned up when ctx is cancelled.
func (h *Hub) Subscribe(ctx context.Context) (<-chan Event, string) {
	subID := uuid.New().String()
	ch := make(chan Event, subscriberBufferSize)

	h.mu.Lock()
	h.subscribers[subID] = ch
	h.mu.Unlock()

	h.logger.Debug("spectator subscribed", "sub_id", subID)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		h.Unsubscribe(subID)
	}()

	return ch, subID
}

// Publish sends an event to every subscriber. Non-blocking: events are
// dropped for subscribers whose channels are full. Returns how many
// subscribers received the event and how many dropped it.
func (h *Hub) Publish(event Event) (delivered, dropped int) {
	h.mu.RLock()
	// Copy subscriber channels under read lock to avoid holding lock during sends
	targets := make([]chan Event, 0, len(h.subscribers))
	for _, ch := range h.subscribers {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- event:
			delivered++
		default:
			// Subscriber channel full, drop event for this subscriber
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Debug("dropped event for slow spectators",
			"event_type", event.Type,
			"dropped", dropped)
	}
	return delivered, dropped
}

// Unsubscribe removes a subscription and closes its channel.
func (h *Hub) Unsubscribe(subID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, exists := h.subscribers[subID]
	if !exists {
		return
	}

	delete(h.subscribers, subID)
	close(ch)

	h.logger.Debug("spectator unsubscribed", "sub_id", subID)
}

// SubscriberCount returns the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close shuts down the hub and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for subID, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, subID)
	}

	h.logger.Debug("hub closed")
}

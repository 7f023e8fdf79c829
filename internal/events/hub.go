// Package events implements the change notification hub. Every mutation the
// service layer performs is published as a row-change event; clients hold a
// subscription keyed by room code and reconcile their snapshot from the
// stream, re-fetching on reconnect.
package events

import (
	"log/slog"
	"sync"
)

// EventType tags what happened to the row.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Collections that produce change events.
const (
	CollectionRooms   = "rooms"
	CollectionPlayers = "players"
	CollectionVotes   = "votes"
)

// Event is one row change. New carries the row after the change, Old the row
// before it; either may be nil depending on Type.
type Event struct {
	Collection string    `json:"collection"`
	Type       EventType `json:"type"`
	RoomCode   string    `json:"room_code"`
	New        any       `json:"new,omitempty"`
	Old        any       `json:"old,omitempty"`
}

// subscriberBuffer bounds how far a consumer may fall behind before events
// are dropped. A dropped event is recoverable: clients re-fetch the snapshot.
const subscriberBuffer = 16

// Hub fans change events out to per-room subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{} // room code -> subscribers
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers interest in change events for a room code. The returned
// channel receives events until Unsubscribe is called with it.
func (h *Hub) Subscribe(roomCode string) chan Event {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[roomCode] == nil {
		h.subs[roomCode] = make(map[chan Event]struct{})
	}
	h.subs[roomCode][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (h *Hub) Unsubscribe(roomCode string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[roomCode]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.subs, roomCode)
		}
	}
}

// Publish delivers an event to every subscriber of its room. Sends never
// block: a subscriber with a full buffer loses the event and is expected to
// re-fetch.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	// Collect channels while holding the lock
	var targets []chan Event
	for ch := range h.subs[ev.RoomCode] {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	// Send without holding the lock
	for _, ch := range targets {
		select {
		case ch <- ev:
		default:
			slog.Warn("dropping event for slow subscriber",
				"room_code", ev.RoomCode,
				"collection", ev.Collection,
				"type", ev.Type,
			)
		}
	}
}

// SubscriberCount reports how many subscriptions a room currently has.
func (h *Hub) SubscriberCount(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[roomCode])
}

package service

import "sync"

// Event resources.
const (
	ResourceOverlays = "overlays"
	ResourceLayers   = "layers"
	ResourceMaps     = "maps"
)

// Event actions not already covered by canvas change actions.
const (
	ActionCreated  = "created"
	ActionDeleted  = "deleted"
	ActionRendered = "rendered"
	ActionCleared  = "cleared"
)

// Event represents a mutation on one map session.
type Event struct {
	MapID    string
	Resource string // "overlays", "layers" or "maps"
	Action   string // "added", "removed", "moved", "centered", "rendered", ...
	ID       string // overlay id, layer name or map id
}

// EventBus is a simple fan-out pub/sub for map change events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	_, ok := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

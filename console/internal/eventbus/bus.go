// Package eventbus is the in-process pub/sub that feeds the dashboard's
// activity panel.
package eventbus

import (
	"encoding/json"
	"sync"
	"time"
)

// Event types published on the bus.
const (
	SubscriptionChanged = "subscription.changed"
	DowngradeScheduled  = "subscription.downgrade_scheduled"
	DowngradeCanceled   = "subscription.downgrade_canceled"
	PaymentStarted      = "payment.started"
	PaymentSucceeded    = "payment.succeeded"
	PaymentFailed       = "payment.failed"
	ReceiptPrinted      = "receipt.printed"
	MemberChanged       = "team.member_changed"
	NotificationRead    = "notification.read"
	LogEntry            = "log.entry"
)

// Event is a single message on the bus.
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"ts"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// Bus fans events out to subscribers over buffered channels. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[chan Event]map[string]bool // nil filter = every type
	now    func() time.Time
	closed bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[chan Event]map[string]bool),
		now:  time.Now,
	}
}

// Subscribe returns a channel (buffer 64) receiving events of the given
// types, or every event when no type is given.
func (b *Bus) Subscribe(types ...string) chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	var filter map[string]bool
	if len(types) > 0 {
		filter = make(map[string]bool, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}
	b.subs[ch] = filter
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers e to every matching subscriber.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = b.now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, filter := range b.subs {
		if filter != nil && !filter[e.Type] {
			continue
		}
		select {
		case ch <- e:
		default:
		}
	}
}

// PublishType marshals data and publishes it under eventType. A nil bus is
// a no-op so components can run without one.
func (b *Bus) PublishType(eventType string, data any) {
	if b == nil {
		return
	}
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	b.Publish(Event{Type: eventType, Data: raw})
}

// Close unsubscribes and closes every subscriber. Later subscriptions get
// an already-closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}

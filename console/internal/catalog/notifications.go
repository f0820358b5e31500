package catalog

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/anavsan/anavsan/console/internal/eventbus"
)

// Notification is one entry of the notification center.
type Notification struct {
	ID        string               `json:"id"`
	Category  NotificationCategory `json:"category"`
	Title     string               `json:"title"`
	Body      string               `json:"body"`
	CreatedAt time.Time            `json:"created_at"`
	Read      bool                 `json:"read"`
}

// Inbox holds the notifications and their read flags.
type Inbox struct {
	mu    sync.RWMutex
	items []Notification
	bus   *eventbus.Bus
}

// NewInbox copies items into an inbox, newest first.
func NewInbox(items []Notification, bus *eventbus.Bus) *Inbox {
	items = slices.Clone(items)
	slices.SortStableFunc(items, func(a, b Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return &Inbox{items: items, bus: bus}
}

// List returns a copy of all notifications.
func (in *Inbox) List() []Notification {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return slices.Clone(in.items)
}

// Unread counts unread notifications.
func (in *Inbox) Unread() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	n := 0
	for _, it := range in.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// MarkRead flags one notification as read.
func (in *Inbox) MarkRead(id string) error {
	in.mu.Lock()
	i := slices.IndexFunc(in.items, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		in.mu.Unlock()
		return fmt.Errorf("notification %q not found", id)
	}
	changed := !in.items[i].Read
	in.items[i].Read = true
	in.mu.Unlock()

	if changed {
		in.bus.PublishType(eventbus.NotificationRead, map[string]string{"id": id})
	}
	return nil
}

// MarkAllRead flags every notification as read and returns how many changed.
func (in *Inbox) MarkAllRead() int {
	in.mu.Lock()
	n := 0
	for i := range in.items {
		if !in.items[i].Read {
			in.items[i].Read = true
			n++
		}
	}
	in.mu.Unlock()

	if n > 0 {
		in.bus.PublishType(eventbus.NotificationRead, map[string]int{"count": n})
	}
	return n
}

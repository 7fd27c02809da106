// Package notify holds the single status banner shown to the user.
//
// There is one current slot. Every Show replaces it and re-arms the
// auto-clear timer; nothing is queued. Subscribers receive the latest value
// through a one-slot mailbox, so a slow reader only ever misses intermediate
// states. A zero Notification means the slot was cleared.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is the content of the slot.
type Notification struct {
	Kind    Kind
	Message string
}

// IsZero reports whether n represents an empty slot.
func (n Notification) IsZero() bool {
	return n == Notification{}
}

// Notifier is safe for concurrent use.
type Notifier struct {
	ttl time.Duration

	mu      sync.Mutex
	current Notification
	timer   *time.Timer
	gen     uint64
	subs    map[int]chan Notification
	nextID  int
}

// New creates a Notifier clearing each notification after ttl.
// A non-positive ttl selects DefaultTTL.
func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl, subs: make(map[int]chan Notification)}
}

// Show replaces the slot with (kind, msg).
func (n *Notifier) Show(kind Kind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.gen++
	gen := n.gen
	n.current = Notification{Kind: kind, Message: msg}
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	n.broadcastLocked()
}

// Success shows a success notification.
func (n *Notifier) Success(msg string) { n.Show(KindSuccess, msg) }

// Error shows an error notification.
func (n *Notifier) Error(msg string) { n.Show(KindError, msg) }

// Info shows an informational notification.
func (n *Notifier) Info(msg string) { n.Show(KindInfo, msg) }

// Clear empties the slot immediately.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.gen++
	if n.current.IsZero() {
		return
	}
	n.current = Notification{}
	n.broadcastLocked()
}

// Current returns the slot and whether it is occupied.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, !n.current.IsZero()
}

// Subscribe returns a channel receiving the current value first and every
// change after it. The returned func unsubscribes and closes the channel.
func (n *Notifier) Subscribe() (<-chan Notification, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan Notification, 1)
	ch <- n.current
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// A later Show or Clear owns the slot.
	if gen != n.gen {
		return
	}
	n.timer = nil
	n.current = Notification{}
	n.broadcastLocked()
}

func (n *Notifier) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// broadcastLocked replaces each mailbox content with the current value.
func (n *Notifier) broadcastLocked() {
	for _, ch := range n.subs {
		select {
		case <-ch:
		default:
		}
		ch <- n.current
	}
}

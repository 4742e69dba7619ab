// Package notify carries the "history changed" signal between clipvault
// processes. It is strictly a cache-invalidation hint — no ordering or
// delivery guarantees; a receiver reloads from shared storage.
//
// Inside one process the Bus fans a Change out to subscriber channels.
// Across processes the daemon relays: subscribers attach to the IPC socket
// with a SUBSCRIBE message and receive CHANGED frames, while sibling
// mutators announce their writes with a CHANGED frame of their own.
package notify

import "sync"

// Change describes one history mutation.
type Change struct {
	// Count is the history length after the mutation.
	Count int
	// Source names the process that made the change.
	Source string
}

// Publisher is the outbound capability the history store needs.
type Publisher interface {
	Publish(Change)
}

// Bus is an in-process fan-out of Changes. Publish never blocks; a slow
// subscriber drops events.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Change
	next int
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Subscribe returns a buffered channel of future Changes and a cancel
// function. Cancelling closes the channel; cancelling twice is safe.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Change, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish fans c out to every subscriber without blocking. The sends
// happen under b.mu: cancel closes channels under the same lock, so a
// subscriber detaching mid-publish can never be sent to after close.
func (b *Bus) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

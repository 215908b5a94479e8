// Package activity keeps the in-memory list of recently sent or opened
// requests for one session.
package activity

import (
	"sync"

	"github.com/holps-7/striko/pkg/model"
)

// Limit is the maximum number of entries kept.
const Limit = 20

// Tracker is a bounded, most-recent-first list of request snapshots with at
// most one entry per request id. It is never persisted.
type Tracker struct {
	mu      sync.RWMutex
	entries []model.Request
	subs    map[int]chan struct{}
	nextSub int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{subs: make(map[int]chan struct{})}
}

// Record stores a copy of req at the front, replacing any entry with the same
// id and dropping the oldest entry past Limit. Requests without a URL are
// ignored and Record returns false.
func (t *Tracker) Record(req model.Request) bool {
	if req.URL == "" {
		return false
	}

	t.mu.Lock()
	entries := make([]model.Request, 0, len(t.entries)+1)
	entries = append(entries, req.Clone())
	for _, e := range t.entries {
		if e.ID != req.ID {
			entries = append(entries, e)
		}
	}
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	t.entries = entries
	t.mu.Unlock()

	t.notify()
	return true
}

// Remove deletes the entry with id and reports whether one existed.
func (t *Tracker) Remove(id string) bool {
	t.mu.Lock()
	kept := t.entries[:0:0]
	for _, e := range t.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(t.entries)
	t.entries = kept
	t.mu.Unlock()

	if removed {
		t.notify()
	}
	return removed
}

// List returns deep copies of the entries, newest first.
func (t *Tracker) List() []model.Request {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Request, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Clone()
	}
	return out
}

// Get returns a copy of the entry with id.
func (t *Tracker) Get(id string) (model.Request, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return model.Request{}, false
}

// Len returns the number of entries.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Subscribe returns a channel that receives a value after every change.
// Notifications coalesce: a slow reader sees at most one pending signal.
// The returned func unsubscribes and closes the channel.
func (t *Tracker) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
			close(ch)
		})
	}
}

func (t *Tracker) notify() {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, ch := range t.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

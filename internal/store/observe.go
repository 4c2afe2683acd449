package store

import (
	"context"
	"sync"
)

type ChangeType string

const (
	Inserted ChangeType = "INSERT"
	Updated  ChangeType = "UPDATE"
	Deleted  ChangeType = "DELETE"
	// Reset means the whole list changed (load, reorder, rollback).
	Reset ChangeType = "RESET"
)

// Change is what observers of a collection receive. Pending marks the
// optimistic half of a mutation that is not confirmed yet.
type Change struct {
	Table   string     `json:"table"`
	Type    ChangeType `json:"type"`
	ID      uint       `json:"id,omitempty"`
	Item    any        `json:"record,omitempty"`
	Pending bool       `json:"pending,omitempty"`
}

const observerBuffer = 64

type observers struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Change
	closed bool
}

// Subscribe streams changes until ctx ends or the collection is closed.
// A consumer that falls behind misses changes; a Reset tells it to re-read.
func (c *Collection[T]) Subscribe(ctx context.Context) <-chan Change {
	o := &c.observers
	ch := make(chan Change, observerBuffer)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		close(ch)
		return ch
	}
	if o.subs == nil {
		o.subs = make(map[int]chan Change)
	}
	id := o.next
	o.next++
	o.subs[id] = ch

	context.AfterFunc(ctx, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(sub)
		}
	})

	return ch
}

func (c *Collection[T]) notify(ch Change) {
	o := &c.observers
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, sub := range o.subs {
		select {
		case sub <- ch:
		default:
			c.log.Warn().Str("type", string(ch.Type)).Msg("observer behind, change dropped")
		}
	}
}

// Close releases every observer.
func (c *Collection[T]) Close() {
	o := &c.observers
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	for id, sub := range o.subs {
		delete(o.subs, id)
		close(sub)
	}
}

// Package store keeps in-memory collections synchronized with remote tables.
//
// A Collection mirrors one table: it loads the rows once, applies the
// realtime change events for that table and offers optimistic mutations
// that, when the remote write fails, put back the last server-confirmed
// value of the rows they touched and nothing else. Every row carries a
// version; an INSERT or UPDATE event that is not newer than the row already
// held is treated as an echo and ignored.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/BruksfildServices01/barbershop-admin/internal/domain"
	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/metrics"
	"github.com/BruksfildServices01/barbershop-admin/internal/realtime"
)

// Record is a mirrored row. Records are plain values; copying the slice is
// a deep copy.
type Record interface {
	comparable
	GetID() uint
	GetVersion() int64
}

// Backend is the remote side of a collection.
type Backend[T Record] interface {
	List(ctx context.Context, includeInactive bool) ([]T, error)
	Insert(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, row T) (T, error)
	UpdateMany(ctx context.Context, rows []T) ([]T, error)
	Delete(ctx context.Context, id uint) error
}

// Options describe how a record type is ordered and toggled.
type Options[T Record] struct {
	Table string
	// Less defines the display order.
	Less func(a, b T) bool
	// IsActive and SetActive are nil for tables without a soft-delete flag.
	IsActive  func(T) bool
	SetActive func(*T, bool)
	// SetOrder is nil for tables without a display-order field.
	SetOrder func(*T, int)
	// IncludeInactive loads soft-deleted rows too (admin view).
	IncludeInactive bool
}

type Collection[T Record] struct {
	opts    Options[T]
	backend Backend[T]
	log     *logger.Logger

	mu    sync.RWMutex
	items []T
	// server holds the last row the backend confirmed per id, through a
	// load, a change event or a write result. Rollbacks restore from it.
	server  map[uint]T
	loading bool
	loadErr error

	observers observers
}

func NewCollection[T Record](backend Backend[T], log *logger.Logger, opts Options[T]) *Collection[T] {
	return &Collection[T]{
		opts:    opts,
		backend: backend,
		log:     log.Named("store").WithField("table", opts.Table),
		server:  make(map[uint]T),
		loading: true,
	}
}

func (c *Collection[T]) Table() string { return c.opts.Table }

// --------------------------------------------------
// Reads
// --------------------------------------------------

// List returns a copy of the rows in display order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Active returns the rows whose active flag is set. Tables without the
// flag return every row.
func (c *Collection[T]) Active() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.opts.IsActive == nil {
		return slices.Clone(c.items)
	}
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if c.opts.IsActive(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Collection[T]) Get(id uint) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Loading reports whether the initial load has not finished yet.
func (c *Collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// LoadErr is the error of the last load, if any.
func (c *Collection[T]) LoadErr() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// --------------------------------------------------
// Load
// --------------------------------------------------

// Load replaces local state with the remote rows. The loading flag is
// cleared whether the query succeeds or not.
func (c *Collection[T]) Load(ctx context.Context) error {
	rows, err := c.backend.List(ctx, c.opts.IncludeInactive)

	c.mu.Lock()
	c.loading = false
	c.loadErr = err
	if err == nil {
		c.items = rows
		c.server = make(map[uint]T, len(rows))
		for _, r := range rows {
			c.server[r.GetID()] = r
		}
		c.sortLocked()
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Msg("load failed")
		return fmt.Errorf("load %s: %w", c.opts.Table, err)
	}

	c.notify(Change{Table: c.opts.Table, Type: Reset})
	return nil
}

// --------------------------------------------------
// Realtime
// --------------------------------------------------

// Apply merges one change event into local state.
func (c *Collection[T]) Apply(ev realtime.Event) error {
	switch ev.Type {
	case realtime.Insert, realtime.Update:
		var row T
		if err := json.Unmarshal(ev.Record, &row); err != nil {
			metrics.IncRealtimeEvent(c.opts.Table, string(ev.Type), "malformed")
			return fmt.Errorf("decode %s %s: %w", c.opts.Table, ev.Type, err)
		}
		if ev.Type == realtime.Insert {
			c.applyInsert(row)
		} else {
			c.applyUpdate(row)
		}
		return nil

	case realtime.Delete:
		var key struct {
			ID uint `json:"id"`
		}
		if err := json.Unmarshal(ev.OldRecord, &key); err != nil {
			metrics.IncRealtimeEvent(c.opts.Table, string(ev.Type), "malformed")
			return fmt.Errorf("decode %s DELETE: %w", c.opts.Table, err)
		}
		c.applyDelete(key.ID)
		return nil
	}

	metrics.IncRealtimeEvent(c.opts.Table, string(ev.Type), "unknown")
	return fmt.Errorf("%s: unknown event type %q", c.opts.Table, ev.Type)
}

func (c *Collection[T]) applyInsert(row T) {
	c.mu.Lock()
	c.confirmLocked(row)
	if c.indexOf(row.GetID()) >= 0 {
		c.mu.Unlock()
		metrics.IncRealtimeEvent(c.opts.Table, string(realtime.Insert), "duplicate")
		return
	}
	c.items = append(c.items, row)
	c.sortLocked()
	c.mu.Unlock()

	metrics.IncRealtimeEvent(c.opts.Table, string(realtime.Insert), "applied")
	c.notify(Change{Table: c.opts.Table, Type: Inserted, ID: row.GetID(), Item: row})
}

// applyUpdate replaces the row by id, inserting it when absent (a row can
// start matching the loaded slice through an update).
func (c *Collection[T]) applyUpdate(row T) {
	c.mu.Lock()
	c.confirmLocked(row)
	i := c.indexOf(row.GetID())
	if i >= 0 && isEcho(c.items[i], row) {
		c.mu.Unlock()
		metrics.IncRealtimeEvent(c.opts.Table, string(realtime.Update), "echo")
		return
	}
	typ := Updated
	if i >= 0 {
		c.items[i] = row
	} else {
		c.items = append(c.items, row)
		typ = Inserted
	}
	c.sortLocked()
	c.mu.Unlock()

	metrics.IncRealtimeEvent(c.opts.Table, string(realtime.Update), "applied")
	c.notify(Change{Table: c.opts.Table, Type: typ, ID: row.GetID(), Item: row})
}

func (c *Collection[T]) applyDelete(id uint) {
	c.mu.Lock()
	delete(c.server, id)
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		metrics.IncRealtimeEvent(c.opts.Table, string(realtime.Delete), "absent")
		return
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.mu.Unlock()

	metrics.IncRealtimeEvent(c.opts.Table, string(realtime.Delete), "applied")
	c.notify(Change{Table: c.opts.Table, Type: Deleted, ID: id})
}

// isEcho reports whether incoming carries nothing newer than held.
// Rows without a version (0) are always applied.
func isEcho[T Record](held, incoming T) bool {
	return incoming.GetVersion() > 0 && incoming.GetVersion() <= held.GetVersion()
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func (c *Collection[T]) indexOf(id uint) int {
	for i, it := range c.items {
		if it.GetID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) sortLocked() {
	if c.opts.Less == nil {
		return
	}
	slices.SortStableFunc(c.items, func(a, b T) int {
		switch {
		case c.opts.Less(a, b):
			return -1
		case c.opts.Less(b, a):
			return 1
		}
		return 0
	})
}

// confirmLocked remembers row as the server's value unless a newer one is
// already known.
func (c *Collection[T]) confirmLocked(row T) {
	id := row.GetID()
	if cur, ok := c.server[id]; ok && row.GetVersion() > 0 && row.GetVersion() < cur.GetVersion() {
		return
	}
	c.server[id] = row
}

// confirmedVersionLocked is the version the backend last reported for id.
func (c *Collection[T]) confirmedVersionLocked(id uint) int64 {
	if row, ok := c.server[id]; ok {
		return row.GetVersion()
	}
	if i := c.indexOf(id); i >= 0 {
		return c.items[i].GetVersion()
	}
	return 0
}

var errNoOrder = fmt.Errorf("table has no display order: %w", domain.ErrInvalidInput)

func notFound(table string, id uint) error {
	return fmt.Errorf("%s %d: %w", table, id, domain.ErrNotFound)
}

package store

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/barbershop-admin/internal/domain"
	"github.com/BruksfildServices01/barbershop-admin/internal/metrics"
)

type versioned interface {
	SetVersion(int64)
}

// expectVersion stamps row with the version the backend will assign after
// confirmed, so the realtime echo of this write is recognised as already
// applied.
func expectVersion[T Record](row *T, confirmed int64) {
	if v, ok := any(row).(versioned); ok {
		v.SetVersion(confirmed + 1)
	}
}

// undo is one row touched by a mutation. placed is the optimistic value the
// mutation put in the list; a delete places nothing.
type undo[T Record] struct {
	id      uint
	placed  T
	deleted bool
}

// Add appends row (id zero) optimistically, inserts it remotely and swaps
// the placeholder for the stored row.
func (c *Collection[T]) Add(ctx context.Context, row T) (T, error) {
	placeholder := row
	expectVersion(&placeholder, 0)

	c.mu.Lock()
	c.items = append(c.items, placeholder)
	c.sortLocked()
	c.mu.Unlock()
	c.notify(Change{Table: c.opts.Table, Type: Inserted, Item: placeholder, Pending: true})

	saved, err := c.backend.Insert(ctx, row)
	if err != nil {
		c.rollback("add", []undo[T]{{placed: placeholder}}, err)
		var zero T
		return zero, fmt.Errorf("add %s: %w", c.opts.Table, err)
	}

	c.mu.Lock()
	if i := c.indexOfValue(placeholder); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.upsertLocked(saved)
	c.sortLocked()
	c.mu.Unlock()

	metrics.IncMutation(c.opts.Table, "add", "ok")
	c.notify(Change{Table: c.opts.Table, Type: Inserted, ID: saved.GetID(), Item: saved})
	return saved, nil
}

// Update replaces the row with the same id optimistically and writes it.
func (c *Collection[T]) Update(ctx context.Context, row T) (T, error) {
	return c.update(ctx, "update", row)
}

func (c *Collection[T]) update(ctx context.Context, op string, row T) (T, error) {
	c.mu.Lock()
	i := c.indexOf(row.GetID())
	if i < 0 {
		c.mu.Unlock()
		var zero T
		return zero, notFound(c.opts.Table, row.GetID())
	}
	optimistic := row
	expectVersion(&optimistic, c.confirmedVersionLocked(row.GetID()))
	c.items[i] = optimistic
	c.sortLocked()
	c.mu.Unlock()
	c.notify(Change{Table: c.opts.Table, Type: Updated, ID: row.GetID(), Item: optimistic, Pending: true})

	saved, err := c.backend.Update(ctx, row)
	if err != nil {
		c.rollback(op, []undo[T]{{id: row.GetID(), placed: optimistic}}, err)
		var zero T
		return zero, fmt.Errorf("%s %s %d: %w", op, c.opts.Table, row.GetID(), err)
	}

	c.mu.Lock()
	c.upsertLocked(saved)
	c.sortLocked()
	c.mu.Unlock()

	metrics.IncMutation(c.opts.Table, op, "ok")
	c.notify(Change{Table: c.opts.Table, Type: Updated, ID: saved.GetID(), Item: saved})
	return saved, nil
}

// Delete removes the row optimistically and deletes it remotely.
func (c *Collection[T]) Delete(ctx context.Context, id uint) error {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return notFound(c.opts.Table, id)
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	c.mu.Unlock()
	c.notify(Change{Table: c.opts.Table, Type: Deleted, ID: id, Pending: true})

	if err := c.backend.Delete(ctx, id); err != nil {
		c.rollback("delete", []undo[T]{{id: id, deleted: true}}, err)
		return fmt.Errorf("delete %s %d: %w", c.opts.Table, id, err)
	}

	c.mu.Lock()
	delete(c.server, id)
	c.mu.Unlock()

	metrics.IncMutation(c.opts.Table, "delete", "ok")
	return nil
}

// ToggleActive flips the soft-delete flag of the row.
func (c *Collection[T]) ToggleActive(ctx context.Context, id uint) (T, error) {
	var zero T
	if c.opts.IsActive == nil || c.opts.SetActive == nil {
		return zero, fmt.Errorf("%s has no active flag: %w", c.opts.Table, domain.ErrInvalidInput)
	}

	row, ok := c.Get(id)
	if !ok {
		return zero, notFound(c.opts.Table, id)
	}
	c.opts.SetActive(&row, !c.opts.IsActive(row))

	return c.update(ctx, "toggle_active", row)
}

// Reorder assigns display order 1..n following ids and persists it.
func (c *Collection[T]) Reorder(ctx context.Context, ids []uint) ([]T, error) {
	if c.opts.SetOrder == nil {
		return nil, fmt.Errorf("%s: %w", c.opts.Table, errNoOrder)
	}

	c.mu.RLock()
	rows := make([]T, 0, len(ids))
	for pos, id := range ids {
		i := c.indexOf(id)
		if i < 0 {
			c.mu.RUnlock()
			return nil, notFound(c.opts.Table, id)
		}
		row := c.items[i]
		c.opts.SetOrder(&row, pos+1)
		rows = append(rows, row)
	}
	c.mu.RUnlock()

	return c.updateMany(ctx, "reorder", rows)
}

// UpdateMany writes rows in a single remote call: all of them are saved or
// none is.
func (c *Collection[T]) UpdateMany(ctx context.Context, rows []T) ([]T, error) {
	return c.updateMany(ctx, "update_many", rows)
}

func (c *Collection[T]) updateMany(ctx context.Context, op string, rows []T) ([]T, error) {
	c.mu.Lock()
	for _, row := range rows {
		if c.indexOf(row.GetID()) < 0 {
			c.mu.Unlock()
			return nil, notFound(c.opts.Table, row.GetID())
		}
	}
	undos := make([]undo[T], 0, len(rows))
	for _, row := range rows {
		optimistic := row
		expectVersion(&optimistic, c.confirmedVersionLocked(row.GetID()))
		c.items[c.indexOf(row.GetID())] = optimistic
		undos = append(undos, undo[T]{id: row.GetID(), placed: optimistic})
	}
	c.sortLocked()
	c.mu.Unlock()
	c.notify(Change{Table: c.opts.Table, Type: Reset, Pending: true})

	saved, err := c.backend.UpdateMany(ctx, rows)
	if err != nil {
		c.rollback(op, undos, err)
		return nil, fmt.Errorf("%s %s: %w", op, c.opts.Table, err)
	}

	c.mu.Lock()
	for _, row := range saved {
		c.upsertLocked(row)
	}
	c.sortLocked()
	c.mu.Unlock()

	metrics.IncMutation(c.opts.Table, op, "ok")
	c.notify(Change{Table: c.opts.Table, Type: Reset})
	return saved, nil
}

// upsertLocked stores a row returned by the backend unless a newer
// confirmed version is already known.
func (c *Collection[T]) upsertLocked(row T) {
	id := row.GetID()
	if cur, ok := c.server[id]; ok && row.GetVersion() > 0 && row.GetVersion() < cur.GetVersion() {
		return
	}
	c.server[id] = row

	if i := c.indexOf(id); i >= 0 {
		c.items[i] = row
		return
	}
	c.items = append(c.items, row)
}

// rollback reverts the rows of one failed mutation to their last confirmed
// value. A row that changed again since the optimistic write, by another
// mutation or a change event, is left alone.
func (c *Collection[T]) rollback(op string, undos []undo[T], err error) {
	metrics.IncMutation(c.opts.Table, op, "rolled_back")
	c.log.Error().Err(err).Str("op", op).Msg("remote write failed, rolling back")

	c.mu.Lock()
	for _, u := range undos {
		confirmed, known := c.server[u.id]
		if u.deleted {
			if known && c.indexOf(u.id) < 0 {
				c.items = append(c.items, confirmed)
			}
			continue
		}

		i := c.indexOfValue(u.placed)
		if i < 0 {
			continue
		}
		if known && u.id != 0 {
			c.items[i] = confirmed
		} else {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
		}
	}
	c.sortLocked()
	c.mu.Unlock()

	c.notify(Change{Table: c.opts.Table, Type: Reset})
}

func (c *Collection[T]) indexOfValue(row T) int {
	for i, it := range c.items {
		if it == row {
			return i
		}
	}
	return -1
}

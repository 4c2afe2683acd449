package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-admin/internal/domain"
	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/realtime"
)

type Row interface {
	GetID() uint
	GetVersion() int64
}

type versioned interface {
	SetVersion(int64)
}

type TableOptions struct {
	// DefaultOrder is applied by List.
	DefaultOrder []Option
	// ActiveColumn filters List when inactive rows are not wanted.
	// Empty means the table has no soft-delete flag.
	ActiveColumn string
}

// Table is the remote data client for one table: select with composed
// filters, insert, update, delete. Each successful write bumps the row
// version and is announced on the publisher.
type Table[T Row] struct {
	db   *gorm.DB
	name string
	opts TableOptions
	pub  realtime.Publisher
	log  *logger.Logger
}

func NewTable[T Row](
	db *gorm.DB,
	name string,
	pub realtime.Publisher,
	log *logger.Logger,
	opts TableOptions,
) *Table[T] {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	return &Table[T]{
		db:   db,
		name: name,
		opts: opts,
		pub:  pub,
		log:  log.Named("table").WithField("table", name),
	}
}

func (t *Table[T]) Name() string { return t.name }

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (t *Table[T]) Select(ctx context.Context, opts ...Option) ([]T, error) {
	var q Query
	for _, o := range opts {
		o(&q)
	}

	var rows []T
	if err := q.apply(t.db.WithContext(ctx).Table(t.name)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return rows, nil
}

// List returns the rows in display order, optionally without inactive ones.
func (t *Table[T]) List(ctx context.Context, includeInactive bool) ([]T, error) {
	opts := append([]Option{}, t.opts.DefaultOrder...)
	if t.opts.ActiveColumn != "" && !includeInactive {
		opts = append(opts, Eq(t.opts.ActiveColumn, true))
	}
	return t.Select(ctx, opts...)
}

func (t *Table[T]) Get(ctx context.Context, id uint) (T, error) {
	var row T
	err := t.db.WithContext(ctx).Table(t.name).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, fmt.Errorf("get %s %d: %w", t.name, id, domain.ErrNotFound)
		}
		return row, fmt.Errorf("get %s %d: %w", t.name, id, err)
	}
	return row, nil
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (t *Table[T]) Insert(ctx context.Context, row T) (T, error) {
	if v, ok := any(&row).(versioned); ok {
		v.SetVersion(1)
	}

	if err := t.db.WithContext(ctx).Table(t.name).Create(&row).Error; err != nil {
		var zero T
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return zero, fmt.Errorf("insert %s: %w", t.name, domain.ErrConflict)
		}
		return zero, fmt.Errorf("insert %s: %w", t.name, err)
	}

	t.publish(ctx, realtime.Insert, row)
	return row, nil
}

func (t *Table[T]) Update(ctx context.Context, row T) (T, error) {
	var saved T
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		saved, err = t.update(tx, row)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}

	t.publish(ctx, realtime.Update, saved)
	return saved, nil
}

// UpdateMany saves rows in one transaction, e.g. a reorder.
func (t *Table[T]) UpdateMany(ctx context.Context, rows []T) ([]T, error) {
	out := make([]T, 0, len(rows))
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			saved, err := t.update(tx, row)
			if err != nil {
				return err
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, row := range out {
		t.publish(ctx, realtime.Update, row)
	}
	return out, nil
}

// update bumps the version in the database first. The UPDATE takes the row
// lock, so a concurrent writer waits and then bumps from the committed
// value; two writes can never end on the same version.
func (t *Table[T]) update(tx *gorm.DB, row T) (T, error) {
	res := tx.Table(t.name).
		Where("id = ?", row.GetID()).
		UpdateColumn("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		var zero T
		return zero, fmt.Errorf("update %s %d: %w", t.name, row.GetID(), res.Error)
	}
	if res.RowsAffected == 0 {
		var zero T
		return zero, fmt.Errorf("update %s %d: %w", t.name, row.GetID(), domain.ErrNotFound)
	}

	if err := tx.Table(t.name).
		Where("id = ?", row.GetID()).
		Select("*").
		Omit("id", "created_at", "version").
		Updates(&row).Error; err != nil {
		var zero T
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return zero, fmt.Errorf("update %s %d: %w", t.name, row.GetID(), domain.ErrConflict)
		}
		return zero, fmt.Errorf("update %s %d: %w", t.name, row.GetID(), err)
	}

	var saved T
	if err := tx.Table(t.name).Where("id = ?", row.GetID()).First(&saved).Error; err != nil {
		return saved, fmt.Errorf("reload %s %d: %w", t.name, row.GetID(), err)
	}
	return saved, nil
}

func (t *Table[T]) Delete(ctx context.Context, id uint) error {
	var row T
	res := t.db.WithContext(ctx).Table(t.name).Where("id = ?", id).Delete(&row)
	if res.Error != nil {
		return fmt.Errorf("delete %s %d: %w", t.name, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s %d: %w", t.name, id, domain.ErrNotFound)
	}

	t.publish(ctx, realtime.Delete, map[string]uint{"id": id})
	return nil
}

func (t *Table[T]) publish(ctx context.Context, typ realtime.EventType, row any) {
	var ev realtime.Event
	var err error
	if typ == realtime.Delete {
		ev, err = realtime.NewEvent(t.name, typ, nil, row)
	} else {
		ev, err = realtime.NewEvent(t.name, typ, row, nil)
	}
	if err == nil {
		err = t.pub.Publish(ctx, ev)
	}
	if err != nil {
		// the write is committed; peers catch up on their next reload
		t.log.Error().Err(err).Str("type", string(typ)).Msg("failed to publish change")
	}
}

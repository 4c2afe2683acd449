// Package realtime delivers per-row change events for named tables.
//
// A Broker fans events out to in-process subscribers. Bridges feed it from
// the outside: PgListener relays Postgres NOTIFY payloads written by the
// change triggers, RedisBridge relays a Redis pub/sub channel so several
// instances see each other's writes.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

// Event is one row change. Record holds the new row for INSERT/UPDATE,
// OldRecord holds at least the primary key for DELETE.
type Event struct {
	Table     string          `json:"table"`
	Type      EventType       `json:"type"`
	Record    json.RawMessage `json:"record,omitempty"`
	OldRecord json.RawMessage `json:"old_record,omitempty"`
	At        time.Time       `json:"commit_timestamp"`
}

var (
	// ErrTimedOut is reported when a bridge did not hear from its source in
	// time. Consumers treat it as non-fatal.
	ErrTimedOut = errors.New("realtime: channel timed out")
	// ErrChannel is reported when a bridge lost its source connection.
	ErrChannel = errors.New("realtime: channel error")
	ErrClosed  = errors.New("realtime: broker closed")
)

// Feed opens a change subscription for one table.
type Feed interface {
	Subscribe(ctx context.Context, table string) (*Subscription, error)
}

// Publisher announces a change made by this process.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher is used when the database itself emits events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// NewEvent marshals rows into an event.
func NewEvent(table string, typ EventType, record, old any) (Event, error) {
	ev := Event{Table: table, Type: typ, At: time.Now().UTC()}
	if record != nil {
		b, err := json.Marshal(record)
		if err != nil {
			return Event{}, err
		}
		ev.Record = b
	}
	if old != nil {
		b, err := json.Marshal(old)
		if err != nil {
			return Event{}, err
		}
		ev.OldRecord = b
	}
	return ev, nil
}

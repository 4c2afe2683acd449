package audit

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
)

// Event is one staff action worth keeping. ActorID is nil for public
// actions (e.g. a booking made on the website).
type Event struct {
	ActorID  *uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Recorder is what use cases depend on.
type Recorder interface {
	Dispatch(ev Event)
}

type Dispatcher struct {
	store *Logger
	log   *logger.Logger
	queue chan Event

	once sync.Once
	done chan struct{}
}

func NewDispatcher(store *Logger, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{
		store: store,
		log:   log.Named("audit"),
		queue: make(chan Event, 100),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		if err := d.store.Log(context.Background(), ev); err != nil {
			d.log.Error().Err(err).Str("action", ev.Action).Msg("audit write failed")
		}
	}
}

// Dispatch never blocks: a full queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn().Str("action", ev.Action).Msg("audit queue full, dropping event")
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
		<-d.done
	})
}

// Nop discards events.
type Nop struct{}

func (Nop) Dispatch(Event) {}

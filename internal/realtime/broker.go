package realtime

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/metrics"
)

const subscriptionBuffer = 256

// Subscription receives events for one table until Close is called or the
// context passed to Subscribe ends.
type Subscription struct {
	Table  string
	Events <-chan Event
	Errors <-chan error

	events chan Event
	errs   chan error
	once   sync.Once
	cancel func()
}

func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Broker is an in-process fan-out. It implements both Feed and Publisher.
type Broker struct {
	log *logger.Logger

	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewBroker(log *logger.Logger) *Broker {
	return &Broker{
		log:  log.Named("realtime"),
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

func (b *Broker) Subscribe(ctx context.Context, table string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &Subscription{
		Table:  table,
		events: make(chan Event, subscriptionBuffer),
		errs:   make(chan error, 4),
	}
	sub.Events = sub.events
	sub.Errors = sub.errs

	stop := context.AfterFunc(ctx, func() { b.remove(sub) })
	sub.cancel = func() {
		stop()
		b.remove(sub)
	}

	if b.subs[table] == nil {
		b.subs[table] = make(map[*Subscription]struct{})
	}
	b.subs[table][sub] = struct{}{}

	return sub, nil
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[sub.Table]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.events)
	close(sub.errs)
}

// Publish delivers ev to every subscriber of ev.Table. A subscriber whose
// buffer is full loses the event and is told through its error channel.
func (b *Broker) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	for sub := range b.subs[ev.Table] {
		select {
		case sub.events <- ev:
		default:
			metrics.IncRealtimeDropped(ev.Table)
			b.log.Warn().Str("table", ev.Table).Msg("subscriber buffer full, dropping event")
			select {
			case sub.errs <- ErrChannel:
			default:
			}
		}
	}
	return nil
}

// Fail reports err to every subscriber, e.g. after a bridge lost its source.
func (b *Broker) Fail(err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, set := range b.subs {
		for sub := range set {
			select {
			case sub.errs <- err:
			default:
			}
		}
	}
}

// Close ends every subscription.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for table, set := range b.subs {
		for sub := range set {
			close(sub.events)
			close(sub.errs)
		}
		delete(b.subs, table)
	}
}

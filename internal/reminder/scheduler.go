package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/metrics"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
	"github.com/BruksfildServices01/barbershop-admin/internal/timezone"
)

// Notifier delivers one reminder.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier only writes the message to the log. No message leaves the
// process.
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) Notify(_ context.Context, r Reminder) error {
	n.Log.Info().
		Str("reminder_id", r.ID).
		Uint("appointment_id", r.AppointmentID).
		Str("phone", r.ClientPhone).
		Str("message", Message(r)).
		Msg("reminder sent (simulated)")
	return nil
}

// Message is the text a client would receive.
func Message(r Reminder) string {
	return fmt.Sprintf(
		"Olá %s! Lembrete: %s com %s em %s às %s.",
		r.ClientName, r.Service, r.Barber,
		r.StartsAt.Format("02/01/2006"), r.StartsAt.Format("15:04"),
	)
}

// Source is the appointment collection the scheduler follows.
type Source interface {
	List() []models.Appointment
	Subscribe(ctx context.Context) <-chan store.Change
}

// Scheduler keeps the queue in step with the appointments and sends due
// reminders on a fixed interval. It runs in one goroutine until its
// context ends.
type Scheduler struct {
	queue    *Queue
	source   Source
	notifier Notifier
	interval time.Duration
	clock    timezone.Clock
	log      *logger.Logger
}

func NewScheduler(
	queue *Queue,
	source Source,
	notifier Notifier,
	interval time.Duration,
	clock timezone.Clock,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		queue:    queue,
		source:   source,
		notifier: notifier,
		interval: interval,
		clock:    clock,
		log:      log.Named("reminder"),
	}
}

func (s *Scheduler) Queue() *Queue { return s.queue }

func (s *Scheduler) Run(ctx context.Context) {
	changes := s.source.Subscribe(ctx)
	s.queue.Reset(s.source.List(), s.clock())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("reminder scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("reminder scheduler stopped")
			return

		case ch, ok := <-changes:
			if !ok {
				s.log.Info().Msg("appointment stream closed, scheduler stopped")
				return
			}
			s.observe(ch)

		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) observe(ch store.Change) {
	if ch.Pending {
		return
	}
	switch ch.Type {
	case store.Deleted:
		s.queue.Remove(ch.ID)
	case store.Inserted, store.Updated:
		if ap, ok := ch.Item.(models.Appointment); ok {
			s.queue.Track(ap, s.clock())
		}
	case store.Reset:
		s.queue.Reset(s.source.List(), s.clock())
	}
}

// Tick sends every reminder due now.
func (s *Scheduler) Tick(ctx context.Context) {
	for _, r := range s.queue.PopDue(s.clock()) {
		if err := s.notifier.Notify(ctx, r); err != nil {
			s.log.Error().Err(err).Uint("appointment_id", r.AppointmentID).Msg("reminder failed")
			continue
		}
		metrics.IncReminderSent()
	}
}

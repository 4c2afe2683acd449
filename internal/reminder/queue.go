// Package reminder schedules simulated client reminders for confirmed
// appointments.
package reminder

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barbershop-admin/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
)

type Reminder struct {
	ID            string    `json:"id"`
	AppointmentID uint      `json:"appointment_id"`
	ClientName    string    `json:"client_name"`
	ClientPhone   string    `json:"client_phone"`
	Service       string    `json:"service"`
	Barber        string    `json:"barber"`
	StartsAt      time.Time `json:"starts_at"`
	DueAt         time.Time `json:"due_at"`
}

// Queue holds at most one pending reminder per appointment.
type Queue struct {
	lead time.Duration
	loc  *time.Location

	mu      sync.Mutex
	pending map[uint]Reminder
	// sent remembers the start time already reminded, so a later update of
	// the same appointment does not send twice.
	sent map[uint]time.Time
}

func NewQueue(lead time.Duration, loc *time.Location) *Queue {
	if loc == nil {
		loc = time.UTC
	}
	return &Queue{
		lead:    lead,
		loc:     loc,
		pending: make(map[uint]Reminder),
		sent:    make(map[uint]time.Time),
	}
}

// Track enqueues a reminder for a confirmed appointment that has not
// started yet, and drops it for anything else.
func (q *Queue) Track(ap models.Appointment, now time.Time) {
	start, err := time.ParseInLocation("2006-01-02 15:04", ap.Date+" "+ap.Time, q.loc)
	if err != nil || domain.Status(ap.Status) != domain.StatusConfirmed || !start.After(now) {
		q.Remove(ap.ID)
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if at, ok := q.sent[ap.ID]; ok && at.Equal(start) {
		return
	}

	r, ok := q.pending[ap.ID]
	if !ok {
		r.ID = uuid.NewString()
	}
	r.AppointmentID = ap.ID
	r.ClientName = ap.ClientName
	r.ClientPhone = ap.ClientPhone
	r.Service = ap.Service
	r.Barber = ap.Barber
	r.StartsAt = start
	r.DueAt = start.Add(-q.lead)
	q.pending[ap.ID] = r
}

func (q *Queue) Remove(appointmentID uint) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, appointmentID)
	delete(q.sent, appointmentID)
}

// Reset replaces the queue content from a full appointment list.
func (q *Queue) Reset(appointments []models.Appointment, now time.Time) {
	keep := make(map[uint]bool, len(appointments))
	for _, ap := range appointments {
		keep[ap.ID] = true
		q.Track(ap, now)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for id := range q.pending {
		if !keep[id] {
			delete(q.pending, id)
		}
	}
	for id := range q.sent {
		if !keep[id] {
			delete(q.sent, id)
		}
	}
}

// PopDue removes and returns the reminders due at now, earliest first.
// Reminders whose appointment already started are discarded.
func (q *Queue) PopDue(now time.Time) []Reminder {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []Reminder
	for id, r := range q.pending {
		if r.DueAt.After(now) {
			continue
		}
		delete(q.pending, id)
		if !r.StartsAt.After(now) {
			continue
		}
		q.sent[id] = r.StartsAt
		due = append(due, r)
	}

	sort.Slice(due, func(i, j int) bool { return due[i].DueAt.Before(due[j].DueAt) })
	return due
}

// Pending returns a copy of the queued reminders ordered by due time.
func (q *Queue) Pending() []Reminder {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Reminder, 0, len(q.pending))
	for _, r := range q.pending {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

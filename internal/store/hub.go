package store

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/realtime"
)

// Table names shared by the database, the change feed and the collections.
const (
	TableAppointments = "appointments"
	TableBarbers      = "barbers"
	TableServices     = "services"
	TableGallery      = "gallery_images"
	TableSchedule     = "weekly_schedules"
	TableHolidays     = "holidays"
)

// SyncedTables lists every table mirrored by the hub.
var SyncedTables = []string{
	TableAppointments,
	TableBarbers,
	TableServices,
	TableGallery,
	TableSchedule,
	TableHolidays,
}

type Backends struct {
	Appointments Backend[models.Appointment]
	Barbers      Backend[models.Barber]
	Services     Backend[models.Service]
	Gallery      Backend[models.GalleryImage]
	Schedule     Backend[models.WeeklySchedule]
	Holidays     Backend[models.Holiday]
}

// Hub owns exactly one collection and one realtime subscription per table.
// Every reader in the process shares them.
type Hub struct {
	Appointments *Collection[models.Appointment]
	Barbers      *Collection[models.Barber]
	Services     *Collection[models.Service]
	Gallery      *Collection[models.GalleryImage]
	Schedule     *Collection[models.WeeklySchedule]
	Holidays     *Collection[models.Holiday]

	feed        realtime.Feed
	reloadDelay time.Duration
	log         *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type runner interface {
	Table() string
	Load(ctx context.Context) error
	Run(ctx context.Context, feed realtime.Feed, reloadDelay time.Duration) error
	Close()
}

func NewHub(b Backends, feed realtime.Feed, reloadDelay time.Duration, log *logger.Logger) *Hub {
	return &Hub{
		Appointments: NewCollection(b.Appointments, log, Options[models.Appointment]{
			Table:           TableAppointments,
			Less:            models.Appointment.Less,
			IncludeInactive: true,
		}),
		Barbers: NewCollection(b.Barbers, log, Options[models.Barber]{
			Table: TableBarbers,
			Less: func(a, b models.Barber) bool {
				return byDisplayOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
			},
			IsActive:        func(b models.Barber) bool { return b.Active },
			SetActive:       func(b *models.Barber, v bool) { b.Active = v },
			SetOrder:        func(b *models.Barber, n int) { b.DisplayOrder = n },
			IncludeInactive: true,
		}),
		Services: NewCollection(b.Services, log, Options[models.Service]{
			Table: TableServices,
			Less: func(a, b models.Service) bool {
				return byDisplayOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
			},
			IsActive:        func(s models.Service) bool { return s.Active },
			SetActive:       func(s *models.Service, v bool) { s.Active = v },
			SetOrder:        func(s *models.Service, n int) { s.DisplayOrder = n },
			IncludeInactive: true,
		}),
		Gallery: NewCollection(b.Gallery, log, Options[models.GalleryImage]{
			Table: TableGallery,
			Less: func(a, b models.GalleryImage) bool {
				return byDisplayOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
			},
			IsActive:        func(g models.GalleryImage) bool { return g.Active },
			SetActive:       func(g *models.GalleryImage, v bool) { g.Active = v },
			SetOrder:        func(g *models.GalleryImage, n int) { g.DisplayOrder = n },
			IncludeInactive: true,
		}),
		Schedule: NewCollection(b.Schedule, log, Options[models.WeeklySchedule]{
			Table: TableSchedule,
			Less: func(a, b models.WeeklySchedule) bool {
				return a.Weekday < b.Weekday
			},
			IsActive:  func(w models.WeeklySchedule) bool { return w.Active },
			SetActive: func(w *models.WeeklySchedule, v bool) { w.Active = v },
			// the schedule is keyed by weekday, inactive days still matter
			IncludeInactive: true,
		}),
		Holidays: NewCollection(b.Holidays, log, Options[models.Holiday]{
			Table: TableHolidays,
			Less: func(a, b models.Holiday) bool {
				if a.Date != b.Date {
					return a.Date < b.Date
				}
				return a.ID < b.ID
			},
		}),
		feed:        feed,
		reloadDelay: reloadDelay,
		log:         log.Named("hub"),
	}
}

func byDisplayOrder(a, b int, idA, idB uint) bool {
	if a != b {
		return a < b
	}
	return idA < idB
}

func (h *Hub) runners() []runner {
	return []runner{h.Appointments, h.Barbers, h.Services, h.Gallery, h.Schedule, h.Holidays}
}

// Start launches the sync loop of every collection.
func (h *Hub) Start(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)

	for _, r := range h.runners() {
		h.wg.Add(1)
		go func(r runner) {
			defer h.wg.Done()
			if err := r.Run(ctx, h.feed, h.reloadDelay); err != nil {
				h.log.Error().Err(err).Str("table", r.Table()).Msg("sync loop stopped")
			}
		}(r)
	}

	h.log.Info().Int("tables", len(h.runners())).Msg("hub started")
}

// Load loads every collection once, without subscribing.
func (h *Hub) Load(ctx context.Context) error {
	for _, r := range h.runners() {
		if err := r.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop ends every sync loop, waits for them and releases observers.
func (h *Hub) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
	for _, r := range h.runners() {
		r.Close()
	}
}

// Changes merges the change streams of every collection.
func (h *Hub) Changes(ctx context.Context) <-chan Change {
	out := make(chan Change, observerBuffer)
	streams := []<-chan Change{
		h.Appointments.Subscribe(ctx),
		h.Barbers.Subscribe(ctx),
		h.Services.Subscribe(ctx),
		h.Gallery.Subscribe(ctx),
		h.Schedule.Subscribe(ctx),
		h.Holidays.Subscribe(ctx),
	}

	var wg sync.WaitGroup
	for _, s := range streams {
		wg.Add(1)
		go func(s <-chan Change) {
			defer wg.Done()
			for ch := range s {
				select {
				case out <- ch:
				case <-ctx.Done():
				}
			}
		}(s)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Catalog is a read-only view of the rows bookings are validated against.
type Catalog struct {
	h *Hub
}

func (h *Hub) Catalog() Catalog { return Catalog{h: h} }

func (c Catalog) ActiveBarbers() []models.Barber    { return c.h.Barbers.Active() }
func (c Catalog) ActiveServices() []models.Service  { return c.h.Services.Active() }
func (c Catalog) Schedule() []models.WeeklySchedule { return c.h.Schedule.List() }
func (c Catalog) Holidays() []models.Holiday        { return c.h.Holidays.List() }

// Appointments and Services let the hub feed the dashboard.
func (c Catalog) Appointments() []models.Appointment { return c.h.Appointments.List() }
func (c Catalog) Services() []models.Service         { return c.h.Services.List() }

package appointment

import (
	"context"

	"github.com/BruksfildServices01/barbershop-admin/internal/models"
)

// Store is the synchronized appointment list the use cases work on.
type Store interface {
	List() []models.Appointment
	Get(id uint) (models.Appointment, bool)
	Add(ctx context.Context, ap models.Appointment) (models.Appointment, error)
	Update(ctx context.Context, ap models.Appointment) (models.Appointment, error)
	Delete(ctx context.Context, id uint) error
}

// Catalog exposes the rows bookings are validated against.
type Catalog interface {
	ActiveBarbers() []models.Barber
	ActiveServices() []models.Service
	Schedule() []models.WeeklySchedule
	Holidays() []models.Holiday
}

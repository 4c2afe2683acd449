package repository

import (
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/realtime"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
)

var (
	_ store.Backend[models.Appointment]    = (*Table[models.Appointment])(nil)
	_ store.Backend[models.Barber]         = (*Table[models.Barber])(nil)
	_ store.Backend[models.Service]        = (*Table[models.Service])(nil)
	_ store.Backend[models.GalleryImage]   = (*Table[models.GalleryImage])(nil)
	_ store.Backend[models.WeeklySchedule] = (*Table[models.WeeklySchedule])(nil)
	_ store.Backend[models.Holiday]        = (*Table[models.Holiday])(nil)
)

var byDisplayOrder = TableOptions{
	DefaultOrder: []Option{OrderBy("display_order"), OrderBy("id")},
	ActiveColumn: "active",
}

// NewBackends binds one Table per synced table.
func NewBackends(db *gorm.DB, pub realtime.Publisher, log *logger.Logger) store.Backends {
	return store.Backends{
		Appointments: NewTable[models.Appointment](db, store.TableAppointments, pub, log, TableOptions{
			DefaultOrder: []Option{OrderBy("date"), OrderBy("time"), OrderBy("id")},
		}),
		Barbers:  NewTable[models.Barber](db, store.TableBarbers, pub, log, byDisplayOrder),
		Services: NewTable[models.Service](db, store.TableServices, pub, log, byDisplayOrder),
		Gallery:  NewTable[models.GalleryImage](db, store.TableGallery, pub, log, byDisplayOrder),
		Schedule: NewTable[models.WeeklySchedule](db, store.TableSchedule, pub, log, TableOptions{
			DefaultOrder: []Option{OrderBy("weekday")},
			ActiveColumn: "active",
		}),
		Holidays: NewTable[models.Holiday](db, store.TableHolidays, pub, log, TableOptions{
			DefaultOrder: []Option{OrderBy("date"), OrderBy("id")},
		}),
	}
}

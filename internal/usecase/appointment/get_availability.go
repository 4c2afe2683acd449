package appointment

import (
	"time"

	domain "github.com/BruksfildServices01/barbershop-admin/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/validators"
)

type GetAvailability struct {
	store        domain.Store
	catalog      domain.Catalog
	slotInterval time.Duration
}

func NewGetAvailability(store domain.Store, catalog domain.Catalog, slotInterval time.Duration) *GetAvailability {
	return &GetAvailability{store: store, catalog: catalog, slotInterval: slotInterval}
}

// Execute returns the free start times of barber on date.
func (uc *GetAvailability) Execute(in domain.AvailabilityInput) ([]string, error) {
	if !validators.IsDate(in.Date) {
		return nil, httperr.ErrBusiness("invalid_date")
	}
	if in.Barber == "" {
		return nil, httperr.ErrBusiness("barber_required")
	}

	slots, err := domain.SlotsForDate(in.Date, uc.catalog.Schedule(), uc.catalog.Holidays(), uc.slotInterval)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	return domain.AvailableSlots(slots, uc.store.List(), in), nil
}

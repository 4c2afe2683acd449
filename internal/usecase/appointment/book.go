package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	shared "github.com/BruksfildServices01/barbershop-admin/internal/domain"
	domain "github.com/BruksfildServices01/barbershop-admin/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/metrics"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/timezone"
	"github.com/BruksfildServices01/barbershop-admin/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type BookAppointmentInput struct {
	ClientName  string
	ClientPhone string

	Service string
	Barber  string

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	store   domain.Store
	catalog domain.Catalog
	audit   audit.Recorder
	clock   timezone.Clock

	slotInterval time.Duration
	minAdvance   time.Duration

	slots slotLocks
}

func NewBookAppointment(
	store domain.Store,
	catalog domain.Catalog,
	audit audit.Recorder,
	clock timezone.Clock,
	slotInterval time.Duration,
	minAdvance time.Duration,
) *BookAppointment {
	return &BookAppointment{
		store:        store,
		catalog:      catalog,
		audit:        audit,
		clock:        clock,
		slotInterval: slotInterval,
		minAdvance:   minAdvance,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {
	ap, err := uc.execute(ctx, in)
	if err != nil {
		metrics.IncBooking("rejected")
		return nil, err
	}
	metrics.IncBooking("created")
	return ap, nil
}

func (uc *BookAppointment) execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Dados do cliente
	// --------------------------------------------------
	name := strings.TrimSpace(in.ClientName)
	if name == "" {
		return nil, httperr.ErrBusiness("invalid_client_name")
	}
	if !validators.IsPhoneValid(in.ClientPhone) {
		return nil, httperr.ErrBusiness("invalid_phone")
	}

	// --------------------------------------------------
	// 2️⃣ Data / hora no timezone da barbearia
	// --------------------------------------------------
	if !validators.IsDate(in.Date) || !validators.IsClock(in.Time) {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	now := uc.clock()
	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Time, now.Location())
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// 3️⃣ Antecedência mínima
	// --------------------------------------------------
	if start.Before(now.Add(uc.minAdvance)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// 4️⃣ Barbeiro e serviço ativos
	// --------------------------------------------------
	if !hasActiveBarber(uc.catalog.ActiveBarbers(), in.Barber) {
		return nil, httperr.ErrBusiness("barber_not_found")
	}
	if !hasActiveService(uc.catalog.ActiveServices(), in.Service) {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	// --------------------------------------------------
	// 5️⃣ Horário ainda disponível (checagem + criação atômicas)
	// --------------------------------------------------
	unlock := uc.slots.lock(in.Barber, in.Date)
	defer unlock()

	slots, err := domain.SlotsForDate(in.Date, uc.catalog.Schedule(), uc.catalog.Holidays(), uc.slotInterval)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	free := domain.AvailableSlots(slots, uc.store.List(), domain.AvailabilityInput{
		Date:   in.Date,
		Barber: in.Barber,
	})
	if !domain.IsAvailable(in.Time, free) {
		return nil, httperr.ErrBusiness("slot_unavailable")
	}

	// --------------------------------------------------
	// 6️⃣ Criação (sempre pendente)
	// --------------------------------------------------
	saved, err := uc.store.Add(ctx, models.Appointment{
		ClientName:  name,
		ClientPhone: validators.NormalizePhone(in.ClientPhone),
		Date:        in.Date,
		Time:        in.Time,
		Service:     in.Service,
		Barber:      in.Barber,
		Status:      string(domain.InitialStatus()),
		Notes:       strings.TrimSpace(in.Notes),
	})
	if errors.Is(err, shared.ErrConflict) {
		// another instance took the slot first
		return nil, httperr.ErrBusiness("slot_unavailable")
	}
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 7️⃣ Auditoria
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_booked",
		Entity:   "appointment",
		EntityID: &saved.ID,
		Metadata: map[string]string{"barber": saved.Barber, "date": saved.Date, "time": saved.Time},
	})

	return &saved, nil
}

func hasActiveBarber(barbers []models.Barber, name string) bool {
	for _, b := range barbers {
		if b.Name == name {
			return true
		}
	}
	return false
}

func hasActiveService(services []models.Service, name string) bool {
	for _, s := range services {
		if s.Name == name {
			return true
		}
	}
	return false
}

package appointment

import (
	"context"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-admin/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
)

type ChangeStatus struct {
	store domain.Store
	audit audit.Recorder
}

func NewChangeStatus(store domain.Store, audit audit.Recorder) *ChangeStatus {
	return &ChangeStatus{store: store, audit: audit}
}

// Execute moves an appointment to status, enforcing the status machine.
// The change is optimistic: a failed write restores the previous status.
func (uc *ChangeStatus) Execute(
	ctx context.Context,
	actorID uint,
	appointmentID uint,
	status string,
) (*models.Appointment, error) {

	to, ok := domain.ParseStatus(status)
	if !ok {
		return nil, httperr.ErrBusiness("invalid_status")
	}

	ap, ok := uc.store.Get(appointmentID)
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	from := ap.Status
	if err := domain.Transition(&ap, to); err != nil {
		return nil, err
	}

	saved, err := uc.store.Update(ctx, ap)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "appointment_" + string(to),
		Entity:   "appointment",
		EntityID: &saved.ID,
		Metadata: map[string]string{"from": from, "to": saved.Status},
	})

	return &saved, nil
}

type DeleteAppointment struct {
	store domain.Store
	audit audit.Recorder
}

func NewDeleteAppointment(store domain.Store, audit audit.Recorder) *DeleteAppointment {
	return &DeleteAppointment{store: store, audit: audit}
}

func (uc *DeleteAppointment) Execute(ctx context.Context, actorID, appointmentID uint) error {
	if _, ok := uc.store.Get(appointmentID); !ok {
		return httperr.ErrBusiness("appointment_not_found")
	}

	if err := uc.store.Delete(ctx, appointmentID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "appointment_deleted",
		Entity:   "appointment",
		EntityID: &appointmentID,
	})
	return nil
}

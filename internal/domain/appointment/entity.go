package appointment

import (
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Transition moves ap to status to, enforcing the status machine.
func Transition(ap *models.Appointment, to Status) error {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return err
	}
	ap.Status = string(to)
	return nil
}

func Confirm(ap *models.Appointment) error  { return Transition(ap, StatusConfirmed) }
func Complete(ap *models.Appointment) error { return Transition(ap, StatusCompleted) }
func Cancel(ap *models.Appointment) error   { return Transition(ap, StatusCancelled) }

// Occupies reports whether ap blocks its slot. Cancelled appointments free it.
func Occupies(ap models.Appointment) bool {
	return Status(ap.Status) != StatusCancelled
}

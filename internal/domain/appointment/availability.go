package appointment

import "github.com/BruksfildServices01/barbershop-admin/internal/models"

type AvailabilityInput struct {
	Date   string // YYYY-MM-DD
	Barber string
}

// AvailableSlots removes from slots the times already taken by a
// non-cancelled appointment of the same barber on the same date.
// Durations are not considered: a slot is taken only by an exact time match.
func AvailableSlots(slots []string, appointments []models.Appointment, in AvailabilityInput) []string {
	taken := make(map[string]struct{})
	for _, ap := range appointments {
		if ap.Date == in.Date && ap.Barber == in.Barber && Occupies(ap) {
			taken[ap.Time] = struct{}{}
		}
	}

	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := taken[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// IsAvailable reports whether t is one of the free slots.
func IsAvailable(t string, free []string) bool {
	for _, s := range free {
		if s == t {
			return true
		}
	}
	return false
}

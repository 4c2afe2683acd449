package appointment

import (
	"fmt"
	"strings"

	domain "github.com/BruksfildServices01/barbershop-admin/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-admin/internal/dto"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
)

// ListFilter narrows the admin listing. Empty fields do not filter.
type ListFilter struct {
	Status   string
	DateFrom string // inclusive, YYYY-MM-DD
	DateTo   string // inclusive, YYYY-MM-DD
	Barber   string
	Search   string // client name or phone, substring
}

type ListAppointments struct {
	store domain.Store
}

func NewListAppointments(store domain.Store) *ListAppointments {
	return &ListAppointments{store: store}
}

func (uc *ListAppointments) Execute(f ListFilter) ([]dto.AppointmentListDTO, error) {
	if f.Status != "" {
		if _, ok := domain.ParseStatus(f.Status); !ok {
			return nil, httperr.ErrBusiness("invalid_status")
		}
	}

	all := uc.store.List()
	out := make([]dto.AppointmentListDTO, 0, len(all))
	for _, ap := range all {
		if f.matches(ap) {
			out = append(out, dto.NewAppointmentListDTO(ap))
		}
	}
	return out, nil
}

func (f ListFilter) matches(ap models.Appointment) bool {
	switch {
	case f.Status != "" && ap.Status != f.Status:
		return false
	case f.DateFrom != "" && ap.Date < f.DateFrom:
		return false
	case f.DateTo != "" && ap.Date > f.DateTo:
		return false
	case f.Barber != "" && ap.Barber != f.Barber:
		return false
	case f.Search != "" && !containsFold(ap.ClientName, f.Search) && !containsFold(ap.ClientPhone, f.Search):
		return false
	}
	return true
}

// MonthRange returns the first and last date strings of year/month.
func MonthRange(year, month int) (string, string, error) {
	if month < 1 || month > 12 || year < 1970 {
		return "", "", httperr.ErrBusiness("invalid_month")
	}
	first := fmt.Sprintf("%04d-%02d-01", year, month)
	last := fmt.Sprintf("%04d-%02d-31", year, month)
	return first, last, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

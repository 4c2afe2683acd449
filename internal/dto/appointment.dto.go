package dto

import (
	"time"

	"github.com/BruksfildServices01/barbershop-admin/internal/models"
)

type AppointmentListDTO struct {
	ID          uint      `json:"id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Service     string    `json:"service"`
	Barber      string    `json:"barber"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewAppointmentListDTO(ap models.Appointment) AppointmentListDTO {
	return AppointmentListDTO{
		ID:          ap.ID,
		ClientName:  ap.ClientName,
		ClientPhone: ap.ClientPhone,
		Date:        ap.Date,
		Time:        ap.Time,
		Service:     ap.Service,
		Barber:      ap.Barber,
		Status:      ap.Status,
		Notes:       ap.Notes,
		CreatedAt:   ap.CreatedAt,
	}
}

type AvailabilityDTO struct {
	Date   string   `json:"date"`
	Barber string   `json:"barber"`
	Slots  []string `json:"slots"`
}

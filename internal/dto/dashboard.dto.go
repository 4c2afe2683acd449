package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO is the response of GET /api/admin/dashboard.
//
// TodayTotal is scoped to today; the status counts cover every loaded
// appointment regardless of date.
type DashboardSummaryDTO struct {
	Today      string `json:"today"`
	TodayTotal int    `json:"today_total"`

	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`

	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
	MonthLabel     string          `json:"month_label"`

	TopServices []ServiceCountDTO `json:"top_services"`
	PeakHours   []PeakHourDTO     `json:"peak_hours"`
	ByBarber    []BarberCountDTO  `json:"by_barber"`
}

type ServiceCountDTO struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

type PeakHourDTO struct {
	Band  string `json:"band"` // e.g. "08-10"
	Count int    `json:"count"`
}

type BarberCountDTO struct {
	Barber string `json:"barber"`
	Count  int    `json:"count"`
}

// CalendarDayDTO groups the appointments of one date.
type CalendarDayDTO struct {
	Date         string               `json:"date"`
	Total        int                  `json:"total"`
	Appointments []AppointmentListDTO `json:"appointments"`
}

type CalendarDTO struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Days  []CalendarDayDTO `json:"days"`
}

// Package dashboard derives the admin statistics from the in-memory
// appointment list. Nothing here queries the database.
package dashboard

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/barbershop-admin/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-admin/internal/dto"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/timezone"
)

const topServices = 5

// PeakBands are the fixed two-hour bands of the peak-hours widget. Hours
// before the first band count in the first one, hours after the last band
// in the last one.
var PeakBands = []string{"08-10", "10-12", "12-14", "14-16", "16-18"}

// Source is what the dashboard reads.
type Source interface {
	Appointments() []models.Appointment
	Services() []models.Service
}

type UseCase struct {
	src   Source
	clock timezone.Clock
}

func New(src Source, clock timezone.Clock) *UseCase {
	return &UseCase{src: src, clock: clock}
}

func (uc *UseCase) Summary() dto.DashboardSummaryDTO {
	return Summarize(uc.src.Appointments(), uc.src.Services(), uc.clock())
}

func (uc *UseCase) Calendar(year, month int) (dto.CalendarDTO, error) {
	if month < 1 || month > 12 {
		return dto.CalendarDTO{}, fmt.Errorf("calendar: invalid month %d", month)
	}
	return Calendar(uc.src.Appointments(), year, month), nil
}

// Summarize computes every dashboard statistic as of now.
func Summarize(appointments []models.Appointment, services []models.Service, now time.Time) dto.DashboardSummaryDTO {
	today := now.Format(time.DateOnly)
	month := now.Format("2006-01")

	prices := make(map[string]decimal.Decimal, len(services))
	for _, s := range services {
		prices[s.Name] = s.Price
	}

	out := dto.DashboardSummaryDTO{
		Today:          today,
		MonthlyRevenue: decimal.Zero,
		MonthLabel:     now.Format("January 2006"),
	}

	perService := map[string]int{}
	perBarber := map[string]int{}
	bands := make([]int, len(PeakBands))

	for _, ap := range appointments {
		if ap.Date == today {
			out.TodayTotal++
		}

		switch domain.Status(ap.Status) {
		case domain.StatusPending:
			out.Pending++
		case domain.StatusConfirmed:
			out.Confirmed++
		case domain.StatusCompleted:
			out.Completed++
			if len(ap.Date) >= 7 && ap.Date[:7] == month {
				// unknown service names add nothing
				out.MonthlyRevenue = out.MonthlyRevenue.Add(prices[ap.Service])
			}
		case domain.StatusCancelled:
			out.Cancelled++
		}

		if !domain.Occupies(ap) {
			continue
		}
		perService[ap.Service]++
		perBarber[ap.Barber]++
		if i, ok := peakBand(ap.Time); ok {
			bands[i]++
		}
	}

	out.TopServices = rankServices(perService, topServices)
	out.ByBarber = rankBarbers(perBarber)
	out.PeakHours = make([]dto.PeakHourDTO, len(PeakBands))
	for i, b := range PeakBands {
		out.PeakHours[i] = dto.PeakHourDTO{Band: b, Count: bands[i]}
	}

	return out
}

// peakBand maps an HH:MM time to its band index.
func peakBand(hm string) (int, bool) {
	if len(hm) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hm[:2])
	if err != nil {
		return 0, false
	}
	i := (h - 8) / 2
	if h < 8 {
		i = 0
	}
	if i >= len(PeakBands) {
		i = len(PeakBands) - 1
	}
	return i, true
}

func rankServices(counts map[string]int, limit int) []dto.ServiceCountDTO {
	out := make([]dto.ServiceCountDTO, 0, len(counts))
	for name, n := range counts {
		out = append(out, dto.ServiceCountDTO{Service: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Service < out[j].Service
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func rankBarbers(counts map[string]int) []dto.BarberCountDTO {
	out := make([]dto.BarberCountDTO, 0, len(counts))
	for name, n := range counts {
		out = append(out, dto.BarberCountDTO{Barber: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Barber < out[j].Barber
	})
	return out
}

// Calendar groups the appointments of year/month per date, dates ascending.
func Calendar(appointments []models.Appointment, year, month int) dto.CalendarDTO {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)

	byDate := map[string][]dto.AppointmentListDTO{}
	for _, ap := range appointments {
		if len(ap.Date) == 10 && ap.Date[:8] == prefix {
			byDate[ap.Date] = append(byDate[ap.Date], dto.NewAppointmentListDTO(ap))
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	cal := dto.CalendarDTO{Year: year, Month: month, Days: make([]dto.CalendarDayDTO, 0, len(dates))}
	for _, d := range dates {
		day := byDate[d]
		sort.SliceStable(day, func(i, j int) bool { return day[i].Time < day[j].Time })
		cal.Days = append(cal.Days, dto.CalendarDayDTO{Date: d, Total: len(day), Appointments: day})
	}
	return cal
}

package appointment

import (
	"time"

	"github.com/BruksfildServices01/barbershop-admin/internal/models"
)

const clockLayout = "15:04"

// SlotsForDay generates the bookable start times of a weekday: every
// interval from opening until closing, skipping the break. An inactive day,
// a missing schedule or a non-positive interval yields no slots.
func SlotsForDay(day *models.WeeklySchedule, interval time.Duration) []string {
	if day == nil || !day.Active || day.OpenTime == "" || day.CloseTime == "" || interval <= 0 {
		return nil
	}

	open, err1 := time.Parse(clockLayout, day.OpenTime)
	closing, err2 := time.Parse(clockLayout, day.CloseTime)
	if err1 != nil || err2 != nil || !open.Before(closing) {
		return nil
	}

	hasBreak := day.BreakStart != "" && day.BreakEnd != ""
	var breakStart, breakEnd time.Time
	if hasBreak {
		var errA, errB error
		breakStart, errA = time.Parse(clockLayout, day.BreakStart)
		breakEnd, errB = time.Parse(clockLayout, day.BreakEnd)
		hasBreak = errA == nil && errB == nil && breakStart.Before(breakEnd)
	}

	var slots []string
	for cur := open; cur.Before(closing); cur = cur.Add(interval) {
		// almoço / pausa
		if hasBreak && !cur.Before(breakStart) && cur.Before(breakEnd) {
			continue
		}
		slots = append(slots, cur.Format(clockLayout))
	}
	return slots
}

// SlotsForDate picks the weekday schedule for date (YYYY-MM-DD) and returns
// its slots, or none when a holiday blocks the date.
func SlotsForDate(
	date string,
	schedule []models.WeeklySchedule,
	holidays []models.Holiday,
	interval time.Duration,
) ([]string, error) {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, err
	}

	for _, h := range holidays {
		if h.Blocks(date) {
			return nil, nil
		}
	}

	weekday := int(d.Weekday())
	for i := range schedule {
		if schedule[i].Weekday == weekday {
			return SlotsForDay(&schedule[i], interval), nil
		}
	}
	return nil, nil
}

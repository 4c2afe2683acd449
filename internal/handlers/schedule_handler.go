package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
	"github.com/BruksfildServices01/barbershop-admin/internal/validators"
)

type ScheduleHandler struct {
	hub   *store.Hub
	audit audit.Recorder
}

func NewScheduleHandler(hub *store.Hub, rec audit.Recorder) *ScheduleHandler {
	return &ScheduleHandler{hub: hub, audit: rec}
}

type ScheduleDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	OpenTime   string `json:"open_time"`
	CloseTime  string `json:"close_time"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
}

type ScheduleUpdateRequest struct {
	Days []ScheduleDayConfig `json:"days" binding:"required,dive"`
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Schedule.List())
}

// Put saves the given weekdays. Days not mentioned keep their settings.
func (h *ScheduleHandler) Put(c *gin.Context) {
	var req ScheduleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	seen := map[int]bool{}
	for _, d := range req.Days {
		if seen[d.Weekday] {
			httperr.BadRequest(c, "duplicate_weekday", "Dia da semana repetido.")
			return
		}
		seen[d.Weekday] = true

		if err := validateDay(d); err != "" {
			httperr.BadRequest(c, err, "Horário inválido.")
			return
		}
	}

	existing := map[int]models.WeeklySchedule{}
	for _, day := range h.hub.Schedule.List() {
		existing[day.Weekday] = day
	}

	// every weekday is seeded at boot; the days are saved together or not at all
	rows := make([]models.WeeklySchedule, 0, len(req.Days))
	for _, d := range req.Days {
		row, found := existing[d.Weekday]
		if !found {
			httperr.NotFound(c, "schedule_day_not_found", "Dia da semana não configurado.")
			return
		}
		row.Active = d.Active
		row.OpenTime = d.OpenTime
		row.CloseTime = d.CloseTime
		row.BreakStart = d.BreakStart
		row.BreakEnd = d.BreakEnd
		rows = append(rows, row)
	}

	if _, err := h.hub.Schedule.UpdateMany(c.Request.Context(), rows); err != nil {
		httperr.FromError(c, err, "failed_to_save_schedule")
		return
	}

	h.audit.Dispatch(audit.Event{
		ActorID:  actorID(c),
		Action:   "schedule_updated",
		Entity:   "weekly_schedule",
		Metadata: req.Days,
	})

	c.JSON(http.StatusOK, h.hub.Schedule.List())
}

func validateDay(d ScheduleDayConfig) string {
	if !d.Active {
		return ""
	}
	if !validators.IsClockRange(d.OpenTime, d.CloseTime) {
		return "invalid_opening_hours"
	}
	if d.BreakStart == "" && d.BreakEnd == "" {
		return ""
	}
	if !validators.IsClockRange(d.BreakStart, d.BreakEnd) ||
		d.BreakStart < d.OpenTime || d.BreakEnd > d.CloseTime {
		return "invalid_break"
	}
	return ""
}

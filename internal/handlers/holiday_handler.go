package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
	"github.com/BruksfildServices01/barbershop-admin/internal/validators"
)

type HolidayHandler struct {
	collectionActions[models.Holiday]
}

func NewHolidayHandler(hub *store.Hub, rec audit.Recorder) *HolidayHandler {
	return &HolidayHandler{collectionActions[models.Holiday]{
		col:    hub.Holidays,
		audit:  rec,
		entity: "holiday",
	}}
}

type HolidayRequest struct {
	Date        string `json:"date" binding:"required"`
	Description string `json:"description"`
	Recurring   bool   `json:"recurring"`
}

func (h *HolidayHandler) Create(c *gin.Context) {
	var req HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validators.IsDate(req.Date) {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	saved, err := h.col.Add(c.Request.Context(), models.Holiday{
		Date:        req.Date,
		Description: strings.TrimSpace(req.Description),
		Recurring:   req.Recurring,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_holiday")
		return
	}

	h.record(c, "created", saved.ID, map[string]string{"date": saved.Date})
	httpresp.Created(c, saved)
}

func (h *HolidayHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	holiday, found := h.col.Get(id)
	if !found {
		httperr.NotFound(c, "holiday_not_found", "Feriado não encontrado.")
		return
	}

	var req HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validators.IsDate(req.Date) {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	holiday.Date = req.Date
	holiday.Description = strings.TrimSpace(req.Description)
	holiday.Recurring = req.Recurring

	saved, err := h.col.Update(c.Request.Context(), holiday)
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_holiday")
		return
	}

	h.record(c, "updated", saved.ID, nil)
	c.JSON(http.StatusOK, saved)
}

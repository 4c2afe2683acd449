package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/timezone"
	"github.com/BruksfildServices01/barbershop-admin/internal/usecase/dashboard"
)

type DashboardHandler struct {
	uc    *dashboard.UseCase
	clock timezone.Clock
}

func NewDashboardHandler(uc *dashboard.UseCase, clock timezone.Clock) *DashboardHandler {
	return &DashboardHandler{uc: uc, clock: clock}
}

// Summary: GET /api/admin/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.Summary())
}

// Calendar: GET /api/admin/calendar?year=&month= (defaults to this month)
func (h *DashboardHandler) Calendar(c *gin.Context) {
	now := h.clock()

	year, month := now.Year(), int(now.Month())
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			httperr.BadRequest(c, "invalid_year", "Ano inválido.")
			return
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			httperr.BadRequest(c, "invalid_month", "Mês inválido.")
			return
		}
		month = m
	}

	cal, err := h.uc.Calendar(year, month)
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}
	c.JSON(http.StatusOK, cal)
}

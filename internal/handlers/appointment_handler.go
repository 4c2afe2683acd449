package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-admin/internal/middleware"
	"github.com/BruksfildServices01/barbershop-admin/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	list         *appointment.ListAppointments
	changeStatus *appointment.ChangeStatus
	remove       *appointment.DeleteAppointment
}

func NewAppointmentHandler(
	list *appointment.ListAppointments,
	changeStatus *appointment.ChangeStatus,
	remove *appointment.DeleteAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		list:         list,
		changeStatus: changeStatus,
		remove:       remove,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// LIST
// ======================================================

// List supports ?status=&from=&to=&barber=&q= and ?year=&month= as a
// shortcut for a whole month.
func (h *AppointmentHandler) List(c *gin.Context) {
	f := appointment.ListFilter{
		Status:   c.Query("status"),
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
		Barber:   c.Query("barber"),
		Search:   c.Query("q"),
	}

	if y, m := c.Query("year"), c.Query("month"); y != "" && m != "" {
		year, err1 := strconv.Atoi(y)
		month, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil {
			httperr.BadRequest(c, "invalid_month", "Mês inválido.")
			return
		}
		from, to, err := appointment.MonthRange(year, month)
		if err != nil {
			httperr.FromError(c, err, "invalid_month")
			return
		}
		f.DateFrom, f.DateTo = from, to
	}

	out, err := h.list.Execute(f)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_appointments")
		return
	}

	httpresp.List(c, out)
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	sess, _ := middleware.Session(c)

	ap, err := h.changeStatus.Execute(c.Request.Context(), sess.UserID, id, req.Status)
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_appointment")
		return
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// DELETE
// ======================================================

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	sess, _ := middleware.Session(c)

	if err := h.remove.Execute(c.Request.Context(), sess.UserID, id); err != nil {
		httperr.FromError(c, err, "failed_to_delete_appointment")
		return
	}

	httpresp.NoContent(c)
}

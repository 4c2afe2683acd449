package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barbershop-admin/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-admin/internal/dto"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
	"github.com/BruksfildServices01/barbershop-admin/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	hub          *store.Hub
	book         *appointment.BookAppointment
	availability *appointment.GetAvailability
}

func NewPublicHandler(
	hub *store.Hub,
	book *appointment.BookAppointment,
	availability *appointment.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		hub:          hub,
		book:         book,
		availability: availability,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	Service     string `json:"service" binding:"required"`
	Barber      string `json:"barber" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:mm
	Notes       string `json:"notes"`
}

////////////////////////////////////////////////////////
// CATALOG
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Services.Active())
}

func (h *PublicHandler) ListBarbers(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Barbers.Active())
}

func (h *PublicHandler) ListGallery(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Gallery.Active())
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	in := domain.AvailabilityInput{
		Date:   c.Query("date"),
		Barber: c.Query("barber"),
	}

	slots, err := h.availability.Execute(in)
	if err != nil {
		httperr.FromError(c, err, "availability_failed")
		return
	}

	if slots == nil {
		slots = []string{}
	}
	c.JSON(http.StatusOK, dto.AvailabilityDTO{Date: in.Date, Barber: in.Barber, Slots: slots})
}

////////////////////////////////////////////////////////
// BOOKING
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), appointment.BookAppointmentInput{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Service:     req.Service,
		Barber:      req.Barber,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_appointment")
		return
	}

	httpresp.Created(c, dto.NewAppointmentListDTO(*ap))
}

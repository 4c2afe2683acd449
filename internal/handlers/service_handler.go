package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
)

type ServiceHandler struct {
	collectionActions[models.Service]
}

func NewServiceHandler(hub *store.Hub, rec audit.Recorder) *ServiceHandler {
	return &ServiceHandler{collectionActions[models.Service]{
		col:    hub.Services,
		audit:  rec,
		entity: "service",
	}}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	DurationMin int             `json:"duration_min" binding:"required,min=1"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

type UpdateServiceRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	DurationMin *int             `json:"duration_min,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	if req.Price.IsNegative() {
		httperr.BadRequest(c, "invalid_price", "Preço inválido.")
		return
	}

	svc := models.Service{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		DurationMin:  req.DurationMin,
		Price:        req.Price.Round(2),
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		Active:       true,
		DisplayOrder: len(h.col.List()) + 1,
	}

	saved, err := h.col.Add(c.Request.Context(), svc)
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_service")
		return
	}

	h.record(c, "created", saved.ID, map[string]string{"name": saved.Name})
	httpresp.Created(c, saved)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	svc, found := h.col.Get(id)
	if !found {
		httperr.NotFound(c, "service_not_found", "Serviço não encontrado.")
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMin != nil {
		if *req.DurationMin < 1 {
			httperr.BadRequest(c, "invalid_duration", "Duração inválida.")
			return
		}
		svc.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			httperr.BadRequest(c, "invalid_price", "Preço inválido.")
			return
		}
		svc.Price = req.Price.Round(2)
	}
	if req.Category != nil {
		svc.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	saved, err := h.col.Update(c.Request.Context(), svc)
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_service")
		return
	}

	h.record(c, "updated", saved.ID, nil)
	c.JSON(http.StatusOK, saved)
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-admin/internal/media"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
)

type BarberHandler struct {
	collectionActions[models.Barber]
	uploader *media.Uploader
}

func NewBarberHandler(hub *store.Hub, rec audit.Recorder, uploader *media.Uploader) *BarberHandler {
	return &BarberHandler{
		collectionActions: collectionActions[models.Barber]{
			col:    hub.Barbers,
			audit:  rec,
			entity: "barber",
		},
		uploader: uploader,
	}
}

// --------- Requests ---------

type CreateBarberRequest struct {
	Name      string `json:"name" binding:"required"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone"`
	Email     string `json:"email" binding:"omitempty,email"`
	PhotoURL  string `json:"photo_url"`
	Bio       string `json:"bio"`
	Schedule  string `json:"schedule"`
}

type UpdateBarberRequest struct {
	Name      *string `json:"name,omitempty"`
	Specialty *string `json:"specialty,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	PhotoURL  *string `json:"photo_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Schedule  *string `json:"schedule,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *BarberHandler) Create(c *gin.Context) {
	var req CreateBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	barber := models.Barber{
		Name:         strings.TrimSpace(req.Name),
		Specialty:    req.Specialty,
		Phone:        req.Phone,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhotoURL:     req.PhotoURL,
		Bio:          req.Bio,
		Schedule:     req.Schedule,
		Active:       true,
		DisplayOrder: len(h.col.List()) + 1,
	}

	saved, err := h.col.Add(c.Request.Context(), barber)
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_barber")
		return
	}

	h.record(c, "created", saved.ID, map[string]string{"name": saved.Name})
	httpresp.Created(c, saved)
}

func (h *BarberHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	barber, found := h.col.Get(id)
	if !found {
		httperr.NotFound(c, "barber_not_found", "Barbeiro não encontrado.")
		return
	}

	var req UpdateBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	// renaming does not touch appointments, they keep the old name
	if req.Name != nil {
		barber.Name = strings.TrimSpace(*req.Name)
	}
	if req.Specialty != nil {
		barber.Specialty = *req.Specialty
	}
	if req.Phone != nil {
		barber.Phone = *req.Phone
	}
	if req.Email != nil {
		barber.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.PhotoURL != nil {
		barber.PhotoURL = *req.PhotoURL
	}
	if req.Bio != nil {
		barber.Bio = *req.Bio
	}
	if req.Schedule != nil {
		barber.Schedule = *req.Schedule
	}
	if req.Active != nil {
		barber.Active = *req.Active
	}

	saved, err := h.col.Update(c.Request.Context(), barber)
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_barber")
		return
	}

	h.record(c, "updated", saved.ID, nil)
	c.JSON(http.StatusOK, saved)
}

// UploadPhoto replaces the barber photo with the multipart field "photo".
func (h *BarberHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	barber, found := h.col.Get(id)
	if !found {
		httperr.NotFound(c, "barber_not_found", "Barbeiro não encontrado.")
		return
	}

	url, ok := uploadImage(c, h.uploader, "photo", "barbers")
	if !ok {
		return
	}

	barber.PhotoURL = url
	saved, err := h.col.Update(c.Request.Context(), barber)
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_barber")
		return
	}

	h.record(c, "photo_uploaded", saved.ID, map[string]string{"url": url})
	c.JSON(http.StatusOK, saved)
}

// uploadImage reads a multipart image field and stores it. It writes the
// error response itself.
func uploadImage(c *gin.Context, uploader *media.Uploader, field, folder string) (string, bool) {
	if !uploader.Enabled() {
		httperr.Write(c, http.StatusServiceUnavailable, "uploads_disabled", "Upload de imagens não configurado.")
		return "", false
	}

	fh, err := c.FormFile(field)
	if err != nil {
		httperr.BadRequest(c, "missing_file", "Arquivo de imagem obrigatório.")
		return "", false
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_file", "Arquivo inválido.")
		return "", false
	}
	defer f.Close()

	url, err := uploader.Upload(c.Request.Context(), folder, f)
	switch {
	case errors.Is(err, media.ErrTooLarge):
		httperr.Write(c, http.StatusRequestEntityTooLarge, "file_too_large", "Imagem muito grande.")
		return "", false
	case errors.Is(err, media.ErrUnsupported):
		httperr.BadRequest(c, "unsupported_image", "Formato de imagem não suportado.")
		return "", false
	case err != nil:
		httperr.Internal(c, "upload_failed", "Erro ao enviar imagem.")
		return "", false
	}
	return url, true
}

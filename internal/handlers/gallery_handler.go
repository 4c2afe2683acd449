package handlers

import (
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

type GalleryHandler struct {
	collectionActions[models.GalleryImage]
	uploader *media.Uploader
}

func NewGalleryHandler(hub *store.Hub, rec audit.Recorder, uploader *media.Uploader) *GalleryHandler {
	return &GalleryHandler{
		collectionActions: collectionActions[models.GalleryImage]{
			col:    hub.Gallery,
			audit:  rec,
			entity: "gallery_image",
		},
		uploader: uploader,
	}
}

type GalleryImageRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category"`
	ImageURL    string `json:"image_url" form:"image_url"`
}

type UpdateGalleryImageRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// Create accepts either a multipart form with an "image" file or JSON with
// an image_url.
func (h *GalleryHandler) Create(c *gin.Context) {
	var req GalleryImageRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		url, ok := uploadImage(c, h.uploader, "image", "gallery")
		if !ok {
			return
		}
		req.ImageURL = url
	}

	if strings.TrimSpace(req.ImageURL) == "" {
		httperr.BadRequest(c, "image_required", "Imagem obrigatória.")
		return
	}

	img := models.GalleryImage{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		ImageURL:     req.ImageURL,
		Active:       true,
		DisplayOrder: len(h.col.List()) + 1,
	}

	saved, err := h.col.Add(c.Request.Context(), img)
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_image")
		return
	}

	h.record(c, "created", saved.ID, map[string]string{"url": saved.ImageURL})
	httpresp.Created(c, saved)
}

func (h *GalleryHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	img, found := h.col.Get(id)
	if !found {
		httperr.NotFound(c, "image_not_found", "Imagem não encontrada.")
		return
	}

	var req UpdateGalleryImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if req.Title != nil {
		img.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		img.Description = *req.Description
	}
	if req.Category != nil {
		img.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		img.ImageURL = *req.ImageURL
	}
	if req.Active != nil {
		img.Active = *req.Active
	}

	saved, err := h.col.Update(c.Request.Context(), img)
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_image")
		return
	}

	h.record(c, "updated", saved.ID, nil)
	c.JSON(http.StatusOK, saved)
}

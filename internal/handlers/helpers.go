package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-admin/internal/middleware"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
)

// --------------------------------------------------
// Request helpers
// --------------------------------------------------

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return 0, false
	}
	return uint(id), true
}

func actorID(c *gin.Context) *uint {
	sess, ok := middleware.Session(c)
	if !ok {
		return nil
	}
	id := sess.UserID
	return &id
}

type ReorderRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// --------------------------------------------------
// Shared collection actions
// --------------------------------------------------

// collectionActions serves the endpoints every catalog table has:
// delete, toggle active and reorder.
type collectionActions[T store.Record] struct {
	col    *store.Collection[T]
	audit  audit.Recorder
	entity string
}

func (a collectionActions[T]) record(c *gin.Context, action string, id uint, meta any) {
	a.audit.Dispatch(audit.Event{
		ActorID:  actorID(c),
		Action:   a.entity + "_" + action,
		Entity:   a.entity,
		EntityID: &id,
		Metadata: meta,
	})
}

func (a collectionActions[T]) List(c *gin.Context) {
	c.JSON(http.StatusOK, a.col.List())
}

func (a collectionActions[T]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := a.col.Delete(c.Request.Context(), id); err != nil {
		httperr.FromError(c, err, a.entity+"_delete_failed")
		return
	}

	a.record(c, "deleted", id, nil)
	httpresp.NoContent(c)
}

func (a collectionActions[T]) ToggleActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	row, err := a.col.ToggleActive(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, a.entity+"_toggle_failed")
		return
	}

	a.record(c, "toggled", id, nil)
	c.JSON(http.StatusOK, row)
}

func (a collectionActions[T]) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	rows, err := a.col.Reorder(c.Request.Context(), req.IDs)
	if err != nil {
		httperr.FromError(c, err, a.entity+"_reorder_failed")
		return
	}

	a.audit.Dispatch(audit.Event{
		ActorID:  actorID(c),
		Action:   a.entity + "_reordered",
		Entity:   a.entity,
		Metadata: req.IDs,
	})
	c.JSON(http.StatusOK, rows)
}

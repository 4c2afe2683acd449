package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/store"
)

// RealtimeHandler streams collection changes to admin clients as
// server-sent events. Every client reads from the shared hub; no client
// opens its own database subscription.
type RealtimeHandler struct {
	hub       *store.Hub
	keepAlive time.Duration
}

func NewRealtimeHandler(hub *store.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, keepAlive: 25 * time.Second}
}

func (h *RealtimeHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	changes := h.hub.Changes(ctx)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("ready", gin.H{"tables": store.SyncedTables})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ch, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("change", ch)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

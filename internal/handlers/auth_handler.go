package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/auth"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-admin/internal/middleware"
)

type AuthHandler struct {
	auth  *auth.Service
	audit audit.Recorder
}

func NewAuthHandler(svc *auth.Service, rec audit.Recorder) *AuthHandler {
	return &AuthHandler{auth: svc, audit: rec}
}

// --------- Requests ---------

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	sess, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		httperr.Unauthorized(c, "invalid_credentials", "E-mail ou senha inválidos.")
		return
	}
	if err != nil {
		httperr.Internal(c, "login_failed", "Erro ao autenticar.")
		return
	}

	h.audit.Dispatch(audit.Event{
		ActorID: &sess.UserID,
		Action:  "login",
		Entity:  "staff_user",
	})

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"session": sess,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := middleware.Session(c)
	if !ok {
		httperr.Unauthorized(c, "unauthenticated", "Sessão inválida.")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sess); err != nil {
		httperr.Internal(c, "logout_failed", "Erro ao encerrar sessão.")
		return
	}

	httpresp.NoContent(c)
}

func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := middleware.Session(c)
	if !ok {
		httperr.Unauthorized(c, "unauthenticated", "Sessão inválida.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

package httperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-admin/internal/domain"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// conflictCodes are business codes answered with 409.
var conflictCodes = map[string]bool{
	"slot_unavailable": true,
	"invalid_state":    true,
}

// FromError writes the response matching err: business codes become 4xx,
// domain sentinels map to their status, anything else is a 500 with
// fallback as code.
func FromError(c *gin.Context, err error, fallback string) {
	var be BusinessError
	switch {
	case errors.As(err, &be):
		if conflictCodes[be.Code] {
			Conflict(c, be.Code, Message(be.Code))
			return
		}
		if strings.HasSuffix(be.Code, "_not_found") {
			NotFound(c, be.Code, Message(be.Code))
			return
		}
		BadRequest(c, be.Code, Message(be.Code))
	case errors.Is(err, domain.ErrNotFound):
		NotFound(c, "not_found", "resource not found")
	case errors.Is(err, domain.ErrConflict):
		Conflict(c, "conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		BadRequest(c, "invalid_input", err.Error())
	default:
		Internal(c, fallback, "internal error")
	}
}

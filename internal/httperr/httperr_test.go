package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/barbershop-admin/internal/domain"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrBusiness("slot_unavailable"), http.StatusConflict, "slot_unavailable"},
		{ErrBusiness("invalid_state"), http.StatusConflict, "invalid_state"},
		{ErrBusiness("barber_not_found"), http.StatusNotFound, "barber_not_found"},
		{ErrBusiness("invalid_phone"), http.StatusBadRequest, "invalid_phone"},
		{fmt.Errorf("update barbers 3: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{domain.ErrConflict, http.StatusConflict, "conflict"},
		{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{errors.New("connection refused"), http.StatusInternalServerError, "fallback"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		FromError(c, tc.err, "fallback")

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), `"error_code":"`+tc.code+`"`)
	}
}

func TestIsBusiness(t *testing.T) {
	err := fmt.Errorf("book: %w", ErrBusiness("too_soon"))
	assert.True(t, IsBusiness(err, "too_soon"))
	assert.False(t, IsBusiness(err, "slot_unavailable"))
	assert.False(t, IsBusiness(errors.New("too_soon"), "too_soon"))
}

package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
)

func TestWriteError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name    string
		err     error
		status  int
		code    apperr.Code
		message string
	}{
		{"not found", apperr.NotFound("cart not found"), http.StatusNotFound, apperr.CodeNotFound, "cart not found"},
		{"validation", apperr.Validation("cart is empty"), http.StatusBadRequest, apperr.CodeValidation, "cart is empty"},
		{"unauthorized", apperr.Unauthorized("missing token"), http.StatusUnauthorized, apperr.CodeUnauthorized, "missing token"},
		{"forbidden", apperr.Forbidden("admin only"), http.StatusForbidden, apperr.CodeForbidden, "admin only"},
		{"conflict", apperr.Conflict("retry"), http.StatusConflict, apperr.CodeConflict, "retry"},
		{"internal hides details", errors.New("pq: connection refused"), http.StatusInternalServerError, apperr.CodeInternal, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			WriteError(rec, req, log, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body errorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		Quantity int `json:"quantity"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":3}`))
	require.NoError(t, Decode(req, &v))
	assert.Equal(t, 3, v.Quantity)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"qty":3}`))
	assert.True(t, apperr.HasCode(Decode(req, &v), apperr.CodeValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.True(t, apperr.HasCode(Decode(req, &v), apperr.CodeValidation))
}

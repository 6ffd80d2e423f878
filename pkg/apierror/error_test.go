package apierror

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	e := ValidationError("", FieldError{Field: "set_name", Message: "is required"})

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string       `json:"code"`
			Message string       `json:"message"`
			Details []FieldError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(e.ToJSON(), &body))

	assert.False(t, body.Success)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "Validation failed", body.Error.Message)
	assert.Equal(t, []FieldError{{Field: "set_name", Message: "is required"}}, body.Error.Details)
}

func TestDetailsOmittedWhenEmpty(t *testing.T) {
	e := NotFound("slab 1 not found")
	assert.Equal(t, http.StatusNotFound, e.StatusCode)
	assert.JSONEq(t, `{"success":false,"error":{"code":"NOT_FOUND","message":"slab 1 not found"}}`, string(e.ToJSON()))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{BadRequest("x"), http.StatusBadRequest, "BAD_REQUEST"},
		{Unauthorized(""), http.StatusUnauthorized, "UNAUTHORIZED"},
		{Conflict("x"), http.StatusConflict, "CONFLICT"},
		{InvalidTransition(""), http.StatusConflict, "INVALID_TRANSITION"},
		{ConfigError(""), http.StatusInternalServerError, "CONFIG_ERROR"},
		{InternalError(""), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{ServiceUnavailable(""), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

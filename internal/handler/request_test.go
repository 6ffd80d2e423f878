package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/pkg/apierror"
)

func decode(t *testing.T, body string, dst interface{}) error {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return decodeJSON(httptest.NewRecorder(), r, dst)
}

func TestDecodeJSONValidation(t *testing.T) {
	var req addBoxRequest
	err := decode(t, `{"purchase_date":"04/12/2025","price":"-1"}`, &req)

	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)

	fields := make(map[string]string)
	for _, d := range apiErr.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "is required", fields["set_name"])
	assert.Equal(t, "must be a date formatted 2006-01-02", fields["purchase_date"])
	assert.Equal(t, "must be at least 0", fields["price"])
}

func TestDecodeJSONAcceptsNumericAndStringMoney(t *testing.T) {
	var req addBoxRequest
	require.NoError(t, decode(t, `{"set_name":"Mask of Change","purchase_date":"2025-04-12","price":45.5}`, &req))
	assert.Equal(t, "45.50", req.Price.StringFixed(2))

	require.NoError(t, decode(t, `{"set_name":"Mask of Change","purchase_date":"2025-04-12","price":"45.5"}`, &req))
	assert.Equal(t, "45.50", req.Price.StringFixed(2))
}

func TestDecodeJSONRejectsBadBodies(t *testing.T) {
	var req addBoxRequest

	err := decode(t, ``, &req)
	assert.Equal(t, "request body is required", err.Error())

	err = decode(t, `{"set_name":`, &req)
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestSequentialRequestValidation(t *testing.T) {
	var req addSequentialRequest
	err := decode(t, `{"type":"binder","identifier":"x","cert_numbers":[]}`, &req)

	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	fields := make(map[string]string)
	for _, d := range apiErr.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "must be one of: pokemon set_based", fields["type"])
	assert.Contains(t, fields, "cert_numbers")
}

func TestWriteErrorMapping(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: Nope", model.ErrSetNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: 1", model.ErrSlabNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: C1", model.ErrCaseFull), http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("%w: 1", model.ErrSlabExists), http.StatusConflict, "CONFLICT"},
		{&model.TransitionError{From: model.SlabSold, To: model.SlabListed}, http.StatusConflict, "INVALID_TRANSITION"},
		{fmt.Errorf("%w: nope", model.ErrInvalidStatus), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("%w: x", model.ErrUnknownImportType), http.StatusBadRequest, "VALIDATION_ERROR"},
		{model.ErrGradingUnconfigured, http.StatusInternalServerError, "CONFIG_ERROR"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger, tt.err)
			assert.Equal(t, tt.status, rec.Code)

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tcg-inventory-api/pkg/apierror"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]int{"boxes": 2})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"boxes":2}}`, rec.Body.String())
}

func TestList(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, []string{"a", "b"}, 2)

	assert.JSONEq(t, `{"success":true,"data":["a","b"],"meta":{"total":2}}`, rec.Body.String())
}

func TestErrorUsesAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apierror.Conflict("slab 1 already exists"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"CONFLICT","message":"slab 1 already exists"}}`, rec.Body.String())
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/pkg/apierror"
	"tcg-inventory-api/pkg/response"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Money fields are validated as numbers.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apierror.RequestTooLarge("")
		case errors.Is(err, io.EOF):
			return apierror.BadRequest("request body is required")
		default:
			return apierror.BadRequest("invalid JSON: " + err.Error())
		}
	}

	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierror.BadRequest(err.Error())
	}

	details := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apierror.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return apierror.ValidationError("", details...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must contain at least " + fe.Param() + " item(s)"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// writeError maps domain errors to API errors and logs anything unexpected.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		response.Error(w, apiErr)
		return
	}

	var transition *model.TransitionError
	switch {
	case errors.As(err, &transition):
		response.Error(w, apierror.InvalidTransition(transition.Error()))
	case errors.Is(err, model.ErrSetNotFound),
		errors.Is(err, model.ErrCaseNotFound),
		errors.Is(err, model.ErrSlabNotFound):
		response.Error(w, apierror.NotFound(err.Error()))
	case errors.Is(err, model.ErrSlabExists),
		errors.Is(err, model.ErrCaseFull):
		response.Error(w, apierror.Conflict(err.Error()))
	case errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidSequence),
		errors.Is(err, model.ErrInvalidCertNumber),
		errors.Is(err, model.ErrUnknownImportType):
		response.Error(w, apierror.ValidationError(err.Error()))
	case errors.Is(err, model.ErrGradingUnconfigured):
		logger.Error("grading service not configured", zap.Error(err))
		response.Error(w, apierror.ConfigError(err.Error()))
	default:
		logger.Error("request failed", zap.Error(err))
		response.Error(w, apierror.InternalError(""))
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/ids"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FilterError represents a validation error for a specific field.
type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	return e.Field + ": " + e.Message
}

// writeValidationProblem maps validator.ValidationErrors to a 400 problem
// with per-field messages.
func writeValidationProblem(w http.ResponseWriter, r *http.Request, err error, env string) {
	fields := map[string]interface{}{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
	}
	opts := []problem.Option{}
	if len(fields) > 0 {
		opts = append(opts, problem.WithErrors(fields))
	}
	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env, opts...)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// ValidateAndExtractULID extracts and validates a ULID path parameter,
// writing a 400 problem when it is missing or malformed.
func ValidateAndExtractULID(w http.ResponseWriter, r *http.Request, paramName, env string) (string, bool) {
	value := strings.TrimSpace(pathParam(r, paramName))
	if value == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", FilterError{Field: paramName, Message: "missing"}, env)
		return "", false
	}
	if err := ids.ValidateULID(value); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", FilterError{Field: paramName, Message: "invalid ULID"}, env)
		return "", false
	}
	return value, true
}

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(r *http.Request) events.Pagination {
	p := events.Pagination{Limit: 20}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 100 {
			p.Limit = limit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			p.Offset = offset
		}
	}
	return p
}

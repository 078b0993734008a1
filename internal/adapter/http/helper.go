package http

import (
	"errors"
	"net/http"
	"strings"

	domain "loan-ledger-backend/internal/domain/loan"

	"github.com/labstack/echo/v4"
)

// ---- helpers ----

// statusFor maps the registry's error taxonomy onto HTTP statuses. Every
// failure is all-or-nothing server-side, so everything here is safe to
// retry once conditions change.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyFunded),
		errors.Is(err, domain.ErrNotFunded),
		errors.Is(err, domain.ErrLoanClosed),
		errors.Is(err, domain.ErrNotEligible):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransferFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidPrice):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

// actorID extracts and validates the caller identity header.
func actorID(c echo.Context) (string, bool) {
	id := strings.TrimSpace(c.Request().Header.Get("X-Actor-Id"))
	return id, reHex32.MatchString(id)
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

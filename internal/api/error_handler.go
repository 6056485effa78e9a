package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/squidpro/auth-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors: a
// machine-readable code plus a human-readable message.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their status code and error code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<CODE>", "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, msg := resolveError(err, log, c)
		_ = c.JSON(status, errorResponse{Error: code, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := "VALIDATION"
		switch he.Code {
		case http.StatusUnauthorized:
			code = "UNAUTHORIZED"
		case http.StatusNotFound:
			code = "NOT_FOUND"
		case http.StatusForbidden:
			code = "FORBIDDEN"
		}
		return he.Code, code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic status and code.
	switch {
	case errors.Is(err, domain.ErrInvalidUsername), errors.Is(err, domain.ErrInvalidName), errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, "INVALID_FORMAT", err.Error()
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, "WEAK_PASSWORD", err.Error()
	case errors.Is(err, domain.ErrPasswordsDontMatch):
		return http.StatusBadRequest, "PASSWORDS_DONT_MATCH", err.Error()
	case errors.Is(err, domain.ErrInvalidStellarAddress):
		return http.StatusBadRequest, "INVALID_STELLAR_ADDRESS", err.Error()
	case errors.Is(err, domain.ErrNoRolesSelected):
		return http.StatusBadRequest, "NO_ROLES_SELECTED", err.Error()
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "INVALID_ROLE", err.Error()
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, "DUPLICATE_USERNAME", err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error()
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "SESSION_EXPIRED", "session expired"
	case errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusUnauthorized, "SESSION_INVALID", "invalid session"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "NOT_FOUND", "account not found"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "INTERNAL", "internal server error"
}

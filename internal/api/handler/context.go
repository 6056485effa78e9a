package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/squidpro/auth-system/internal/core/domain"
)

// ctxAccount extracts the account injected by the Auth middleware. Its
// presence proves the middleware ran; a handler reached without it is a
// wiring bug surfaced as 401 rather than a panic.
func ctxAccount(c echo.Context) (*domain.Account, error) {
	account, _ := c.Get("account").(*domain.Account)
	if account == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return account, nil
}

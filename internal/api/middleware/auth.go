package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/squidpro/auth-system/internal/api/metrics"
	"github.com/squidpro/auth-system/internal/core/domain"
)

// Authenticator resolves a credential to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, cred domain.Credential) (*domain.Account, error)
}

// Auth extracts the request credential (bearer session token or legacy
// X-API-Key), resolves it, and injects the account into the echo context.
// Both credential variants go through the same resolution path; rejection
// errors fall through to the central error handler.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cred, err := domain.CredentialFromHeaders(
				c.Request().Header.Get("Authorization"),
				c.Request().Header.Get("X-API-Key"),
			)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("none").Inc()
				return err
			}

			account, err := auth.Authenticate(c.Request().Context(), cred)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues(credKindLabel(cred.Kind)).Inc()
				return err
			}

			c.Set("account", account)
			c.Set("credential", cred)
			return next(c)
		}
	}
}

// RequireCredential restricts a route to one credential variant. Runs after
// Auth, which stores the resolved credential in the context. Routes without
// it accept either variant.
func RequireCredential(kind domain.CredentialKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cred, ok := c.Get("credential").(domain.Credential)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if cred.Kind != kind {
				metrics.AuthFailuresTotal.WithLabelValues(credKindLabel(cred.Kind)).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "credential not accepted on this endpoint")
			}
			return next(c)
		}
	}
}

func credKindLabel(kind domain.CredentialKind) string {
	if kind == domain.CredentialLegacyAPIKey {
		return "api_key"
	}
	return "session"
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/squidpro/auth-system/internal/core/domain"
)

type stubAuthenticator struct {
	account *domain.Account
	err     error
	gotCred domain.Credential
}

func (s *stubAuthenticator) Authenticate(_ context.Context, cred domain.Credential) (*domain.Account, error) {
	s.gotCred = cred
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, headers map[string]string, next echo.HandlerFunc) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	return c, mw(next)(c)
}

func TestAuth_SessionToken(t *testing.T) {
	want := &domain.Account{ID: "abc123", Username: "alice"}
	auth := &stubAuthenticator{account: want}

	called := false
	c, err := invoke(t, Auth(auth), map[string]string{"Authorization": "Bearer tok_1"}, func(c echo.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if !called {
		t.Fatal("next handler not called")
	}
	if auth.gotCred.Kind != domain.CredentialSessionToken || auth.gotCred.Value != "tok_1" {
		t.Fatalf("unexpected credential: %+v", auth.gotCred)
	}
	if got, _ := c.Get("account").(*domain.Account); got != want {
		t.Fatalf("account not injected into context: %+v", got)
	}
}

func TestAuth_LegacyAPIKey(t *testing.T) {
	auth := &stubAuthenticator{account: &domain.Account{ID: "abc123"}}

	_, err := invoke(t, Auth(auth), map[string]string{"X-API-Key": "sup_feed"}, func(echo.Context) error { return nil })
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if auth.gotCred.Kind != domain.CredentialLegacyAPIKey || auth.gotCred.Value != "sup_feed" {
		t.Fatalf("unexpected credential: %+v", auth.gotCred)
	}
}

func TestAuth_NoCredential(t *testing.T) {
	auth := &stubAuthenticator{account: &domain.Account{}}

	_, err := invoke(t, Auth(auth), nil, func(echo.Context) error {
		t.Fatal("next must not be called without a credential")
		return nil
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuth_RejectionPropagates(t *testing.T) {
	auth := &stubAuthenticator{err: domain.ErrSessionExpired}

	_, err := invoke(t, Auth(auth), map[string]string{"Authorization": "Bearer tok_old"}, func(echo.Context) error {
		t.Fatal("next must not be called on rejection")
		return nil
	})
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestRequireCredential(t *testing.T) {
	mw := RequireCredential(domain.CredentialLegacyAPIKey)

	run := func(set bool, kind domain.CredentialKind) error {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/suppliers/me", nil), httptest.NewRecorder())
		if set {
			c.Set("credential", domain.Credential{Kind: kind, Value: "x"})
		}
		return mw(func(echo.Context) error { return nil })(c)
	}

	if err := run(true, domain.CredentialLegacyAPIKey); err != nil {
		t.Fatalf("matching credential should pass: %v", err)
	}

	err := run(true, domain.CredentialSessionToken)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("wrong credential kind should get 401, got %v", err)
	}

	err = run(false, domain.CredentialSessionToken)
	he, ok = err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("missing credential should get 401, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(domain.RoleSupplier, domain.RoleReviewer)

	run := func(account *domain.Account) error {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/suppliers/me", nil), httptest.NewRecorder())
		if account != nil {
			c.Set("account", account)
		}
		return mw(func(echo.Context) error { return nil })(c)
	}

	if err := run(&domain.Account{Roles: []domain.Role{domain.RoleBuyer, domain.RoleSupplier}}); err != nil {
		t.Fatalf("supplier should pass: %v", err)
	}

	err := run(&domain.Account{Roles: []domain.Role{domain.RoleBuyer}})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("buyer-only account should get 403, got %v", err)
	}

	err = run(nil)
	he, ok = err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("missing account should get 401, got %v", err)
	}
}

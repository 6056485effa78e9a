package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
)

type stubAuthService struct {
	checkUsernameFn  func(ctx context.Context, username string) (ports.Availability, error)
	checkEmailFn     func(ctx context.Context, email string) (ports.Availability, error)
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	registerLegacyFn func(ctx context.Context, role domain.Role, in ports.LegacyRegisterInput) (*domain.Account, error)
	loginFn          func(ctx context.Context, username, password string) (*domain.Account, *domain.Session, error)
	logoutFn         func(ctx context.Context, token string) error
	logoutAllFn      func(ctx context.Context, accountID string) error
	authenticateFn   func(ctx context.Context, cred domain.Credential) (*domain.Account, error)
	grantRoleFn      func(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error)
}

func (s *stubAuthService) CheckUsername(ctx context.Context, username string) (ports.Availability, error) {
	return s.checkUsernameFn(ctx, username)
}
func (s *stubAuthService) CheckEmail(ctx context.Context, email string) (ports.Availability, error) {
	return s.checkEmailFn(ctx, email)
}
func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}
func (s *stubAuthService) RegisterLegacy(ctx context.Context, role domain.Role, in ports.LegacyRegisterInput) (*domain.Account, error) {
	return s.registerLegacyFn(ctx, role, in)
}
func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.Account, *domain.Session, error) {
	return s.loginFn(ctx, username, password)
}
func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}
func (s *stubAuthService) LogoutAll(ctx context.Context, accountID string) error {
	return s.logoutAllFn(ctx, accountID)
}
func (s *stubAuthService) Authenticate(ctx context.Context, cred domain.Credential) (*domain.Account, error) {
	return s.authenticateFn(ctx, cred)
}
func (s *stubAuthService) GrantRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error) {
	return s.grantRoleFn(ctx, accountID, role)
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.Username != "alice" || len(in.Roles) != 2 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Account{
				ID:       "abc123",
				Username: in.Username,
				Roles:    []domain.Role{domain.RoleBuyer, domain.RoleReviewer},
				LegacyKeys: []domain.LegacyAPIKey{
					{Key: "rev_feed", Role: domain.RoleReviewer},
				},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","name":"Alice","email":"a@example.com","password":"supersecret","repeat_password":"supersecret","stellar_address":"`+strings.Repeat("G", 56)+`","roles":["buyer","reviewer"]}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["user_id"] != "abc123" || resp["api_key"] != "rev_feed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	roles, _ := resp["roles"].([]any)
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles in response, got %+v", resp["roles"])
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.Account, error) {
			return nil, domain.ErrDuplicateUsername
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","name":"A","email":"a@example.com","password":"supersecret","repeat_password":"supersecret","stellar_address":"x"}`)

	if err := h.Register(c); err != domain.ErrDuplicateUsername {
		t.Fatalf("expected ErrDuplicateUsername to propagate, got %v", err)
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.Account, error) {
			t.Fatalf("service must not be called on invalid payload")
			return nil, nil
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/auth/register", `{"username":"alice"}`)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (*domain.Account, *domain.Session, error) {
			if username != "alice" || password != "supersecret" {
				t.Fatalf("unexpected credentials: %s", username)
			}
			return &domain.Account{ID: "abc123", Username: "alice", Roles: []domain.Role{domain.RoleBuyer}},
				&domain.Session{Token: "tok_1", AccountID: "abc123", ExpiresAt: time.Now().Add(time.Hour)},
				nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"supersecret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["session_token"] != "tok_1" {
		t.Fatalf("expected session token in response: %+v", resp)
	}
	user, _ := resp["user"].(map[string]any)
	if user["username"] != "alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.Account, *domain.Session, error) {
			return nil, nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"bad"}`)
	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Logout_AlwaysSucceeds(t *testing.T) {
	revoked := 0
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, token string) error {
			revoked++
			return nil
		},
	}
	h := NewAuthHandler(stub)

	// with a token
	c, rec := newTestContext(t, http.MethodPost, "/auth/logout", "")
	c.Request().Header.Set("Authorization", "Bearer tok_1")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || revoked != 1 {
		t.Fatalf("expected revocation, got code=%d revoked=%d", rec.Code, revoked)
	}

	// without any token: still 200
	c, rec = newTestContext(t, http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for tokenless logout, got %d", rec.Code)
	}
}

func TestAuthHandler_Session(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newTestContext(t, http.MethodGet, "/auth/session", "")
	c.Set("account", &domain.Account{ID: "abc123", Username: "alice", Roles: []domain.Role{domain.RoleBuyer, domain.RoleReviewer}})
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	user, _ := resp["user"].(map[string]any)
	roles, _ := user["roles"].([]any)
	if len(roles) != 2 {
		t.Fatalf("expected both roles in session payload: %+v", user)
	}
}

func TestAuthHandler_CheckUsername(t *testing.T) {
	stub := &stubAuthService{
		checkUsernameFn: func(_ context.Context, username string) (ports.Availability, error) {
			if username != "ab" {
				t.Fatalf("unexpected username %q", username)
			}
			return ports.Availability{Available: false, Message: "too short"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/auth/check-username?username=ab", "")
	if err := h.CheckUsername(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["available"] != false {
		t.Fatalf("expected unavailable, got %+v", resp)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
)

func TestLegacyHandler_RegisterSupplier(t *testing.T) {
	stub := &stubAuthService{
		registerLegacyFn: func(_ context.Context, role domain.Role, in ports.LegacyRegisterInput) (*domain.Account, error) {
			if role != domain.RoleSupplier {
				t.Fatalf("expected supplier role, got %q", role)
			}
			if in.Email != "vendor@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Account{
				ID:    "abc123",
				Roles: []domain.Role{domain.RoleBuyer, domain.RoleSupplier},
				LegacyKeys: []domain.LegacyAPIKey{
					{Key: "sup_feed", Role: domain.RoleSupplier},
				},
			}, nil
		},
	}
	h := NewLegacyHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/suppliers/register",
		`{"name":"Vendor","email":"vendor@example.com","stellar_address":"`+strings.Repeat("G", 56)+`"}`)
	if err := h.RegisterSupplier(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["api_key"] != "sup_feed" {
		t.Fatalf("expected the supplier key in the response, got %+v", resp)
	}
}

func TestLegacyHandler_RegisterReviewer_PassesSpecializations(t *testing.T) {
	var got []string
	stub := &stubAuthService{
		registerLegacyFn: func(_ context.Context, role domain.Role, in ports.LegacyRegisterInput) (*domain.Account, error) {
			if role != domain.RoleReviewer {
				t.Fatalf("expected reviewer role, got %q", role)
			}
			got = in.Specializations
			return &domain.Account{
				ID:    "abc123",
				Roles: []domain.Role{domain.RoleBuyer, domain.RoleReviewer},
				LegacyKeys: []domain.LegacyAPIKey{
					{Key: "rev_feed", Role: domain.RoleReviewer},
				},
			}, nil
		},
	}
	h := NewLegacyHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/reviewers/register",
		`{"name":"Rita","email":"rita@example.com","stellar_address":"`+strings.Repeat("G", 56)+`","specializations":["financial","weather"]}`)
	if err := h.RegisterReviewer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("specializations not forwarded: %+v", got)
	}
}

func TestLegacyHandler_DuplicateEmail(t *testing.T) {
	stub := &stubAuthService{
		registerLegacyFn: func(context.Context, domain.Role, ports.LegacyRegisterInput) (*domain.Account, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	h := NewLegacyHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/suppliers/register",
		`{"name":"Vendor","email":"vendor@example.com","stellar_address":"x"}`)
	if err := h.RegisterSupplier(c); err != domain.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

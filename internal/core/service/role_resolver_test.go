package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/squidpro/auth-system/internal/core/domain"
)

type stubSupplierLedger struct {
	profile *domain.SupplierProfile
	err     error
}

func (s *stubSupplierLedger) SupplierStats(context.Context, string) (*domain.SupplierProfile, error) {
	return s.profile, s.err
}

type stubReviewerLedger struct {
	profile *domain.ReviewerProfile
	err     error
}

func (s *stubReviewerLedger) ReviewerStats(context.Context, string) (*domain.ReviewerProfile, error) {
	return s.profile, s.err
}

func multiRoleAccount() *domain.Account {
	return &domain.Account{
		ID:    "acct_1",
		Roles: []domain.Role{domain.RoleBuyer, domain.RoleSupplier, domain.RoleReviewer},
		LegacyKeys: []domain.LegacyAPIKey{
			{Key: "sup_abc", Role: domain.RoleSupplier},
			{Key: "rev_def", Role: domain.RoleReviewer},
		},
	}
}

func TestRoleResolver_AllLedgersHealthy(t *testing.T) {
	r := NewRoleResolver(
		&stubSupplierLedger{profile: &domain.SupplierProfile{Balance: 12.5, PackageCount: 3}},
		&stubReviewerLedger{profile: &domain.ReviewerProfile{
			Balance:         4.2,
			ReputationLevel: "trusted",
			Stats:           domain.ReviewerStats{TotalReviews: 17, ConsensusRate: 0.91},
		}},
		time.Second, zerolog.Nop(),
	)

	profiles := r.Resolve(context.Background(), multiRoleAccount())
	if profiles.Buyer == nil {
		t.Fatalf("buyer payload must always be present")
	}
	if profiles.Supplier == nil || profiles.Supplier.Balance != 12.5 || profiles.Supplier.PackageCount != 3 {
		t.Fatalf("unexpected supplier payload: %+v", profiles.Supplier)
	}
	if profiles.Supplier.LegacyAPIKey != "sup_abc" {
		t.Fatalf("supplier key not attached")
	}
	if profiles.Reviewer == nil || profiles.Reviewer.Stats.TotalReviews != 17 {
		t.Fatalf("unexpected reviewer payload: %+v", profiles.Reviewer)
	}
}

func TestRoleResolver_DegradesOnLedgerFailure(t *testing.T) {
	r := NewRoleResolver(
		&stubSupplierLedger{profile: &domain.SupplierProfile{Balance: 12.5}},
		&stubReviewerLedger{err: errors.New("connection refused")},
		time.Second, zerolog.Nop(),
	)

	profiles := r.Resolve(context.Background(), multiRoleAccount())
	if profiles.Buyer == nil || profiles.Supplier == nil {
		t.Fatalf("healthy roles must resolve despite reviewer outage")
	}
	if profiles.Reviewer == nil {
		t.Fatalf("reviewer payload must degrade, not disappear")
	}
	if !profiles.Reviewer.Degraded {
		t.Fatalf("degraded flag not set")
	}
	if profiles.Reviewer.Balance != 0 || profiles.Reviewer.Stats.TotalReviews != 0 {
		t.Fatalf("degraded payload must be zeroed: %+v", profiles.Reviewer)
	}
	if profiles.Reviewer.LegacyAPIKey != "rev_def" {
		t.Fatalf("key attachment must survive degradation")
	}
}

func TestRoleResolver_SkipsUnheldRoles(t *testing.T) {
	r := NewRoleResolver(
		&stubSupplierLedger{err: errors.New("should not be called")},
		&stubReviewerLedger{err: errors.New("should not be called")},
		time.Second, zerolog.Nop(),
	)

	profiles := r.Resolve(context.Background(), &domain.Account{
		ID:    "acct_2",
		Roles: []domain.Role{domain.RoleBuyer},
	})
	if profiles.Supplier != nil || profiles.Reviewer != nil {
		t.Fatalf("unheld roles must not resolve: %+v", profiles)
	}
	if profiles.PrimaryRole() != domain.RoleBuyer {
		t.Fatalf("expected buyer primary role")
	}
}

func TestRoleResolver_AccountSpecializationsBackfill(t *testing.T) {
	r := NewRoleResolver(
		&stubSupplierLedger{},
		&stubReviewerLedger{err: errors.New("down")},
		time.Second, zerolog.Nop(),
	)

	account := &domain.Account{
		ID:              "acct_3",
		Roles:           []domain.Role{domain.RoleBuyer, domain.RoleReviewer},
		Specializations: []string{"data-quality", "general"},
	}
	profiles := r.Resolve(context.Background(), account)
	if len(profiles.Reviewer.Specializations) != 2 {
		t.Fatalf("expected account specializations on degraded payload, got %+v", profiles.Reviewer.Specializations)
	}
}

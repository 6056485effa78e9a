package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
)

const defaultLedgerTimeout = 3 * time.Second

// RoleResolverService assembles the externally visible per-role view of an
// account from the supplier and reviewer ledgers. It is partial-failure
// tolerant: an unreachable ledger degrades that role's payload to defaults
// instead of failing the whole resolution, so a reviewer-subsystem outage
// never blocks buyer or catalog access.
type RoleResolverService struct {
	suppliers ports.SupplierLedger
	reviewers ports.ReviewerLedger
	timeout   time.Duration
	log       zerolog.Logger
}

func NewRoleResolver(suppliers ports.SupplierLedger, reviewers ports.ReviewerLedger, timeout time.Duration, log zerolog.Logger) *RoleResolverService {
	if timeout <= 0 {
		timeout = defaultLedgerTimeout
	}
	return &RoleResolverService{suppliers: suppliers, reviewers: reviewers, timeout: timeout, log: log}
}

// Resolve fetches the ledger snapshot for each role the account holds.
// Ledger calls are bounded by the resolver's timeout. The returned payloads
// are for display; authorization always reads account.Roles directly.
func (r *RoleResolverService) Resolve(ctx context.Context, account *domain.Account) *domain.RoleProfiles {
	profiles := &domain.RoleProfiles{Buyer: &domain.BuyerProfile{}}

	if account.HasRole(domain.RoleSupplier) {
		profiles.Supplier = r.resolveSupplier(ctx, account)
	}
	if account.HasRole(domain.RoleReviewer) {
		profiles.Reviewer = r.resolveReviewer(ctx, account)
	}
	return profiles
}

func (r *RoleResolverService) resolveSupplier(ctx context.Context, account *domain.Account) *domain.SupplierProfile {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	profile, err := r.suppliers.SupplierStats(callCtx, account.ID)
	if err != nil {
		r.log.Warn().Err(err).
			Str("account_id", account.ID).
			Str("ledger", "supplier").
			Msg("ledger unreachable, degrading payload")
		profile = &domain.SupplierProfile{Degraded: true}
	}
	profile.LegacyAPIKey = account.KeyForRole(domain.RoleSupplier)
	return profile
}

func (r *RoleResolverService) resolveReviewer(ctx context.Context, account *domain.Account) *domain.ReviewerProfile {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	profile, err := r.reviewers.ReviewerStats(callCtx, account.ID)
	if err != nil {
		r.log.Warn().Err(err).
			Str("account_id", account.ID).
			Str("ledger", "reviewer").
			Msg("ledger unreachable, degrading payload")
		profile = &domain.ReviewerProfile{Degraded: true}
	}
	profile.LegacyAPIKey = account.KeyForRole(domain.RoleReviewer)
	if len(profile.Specializations) == 0 {
		profile.Specializations = account.Specializations
	}
	return profile
}

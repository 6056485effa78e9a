package ports

import (
	"context"

	"github.com/squidpro/auth-system/internal/core/domain"
)

// SupplierLedger exposes the external supplier accounting subsystem.
// Calls are bounded by the caller's context; an unreachable ledger is a
// normal condition the role resolver degrades around.
type SupplierLedger interface {
	SupplierStats(ctx context.Context, accountID string) (*domain.SupplierProfile, error)
}

// ReviewerLedger exposes the external review-consensus subsystem.
type ReviewerLedger interface {
	ReviewerStats(ctx context.Context, accountID string) (*domain.ReviewerProfile, error)
}

package ports

import (
	"context"

	"github.com/squidpro/auth-system/internal/core/domain"
)

// AccountRepository defines the persistence interface for account records.
//
// Create must enforce username and email uniqueness atomically: under two
// concurrent registrations for the same username, exactly one call returns
// the account and the other returns domain.ErrDuplicateUsername. The
// advisory UsernameTaken/EmailTaken pre-checks are for UX only and carry no
// authority.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByLegacyKey(ctx context.Context, key string) (*domain.Account, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	// AddRole grants a role and records its API key. Granting a role the
	// account already holds is a no-op and returns the unchanged account.
	AddRole(ctx context.Context, accountID string, role domain.Role, key domain.LegacyAPIKey) (*domain.Account, error)
}

package ports

import (
	"context"

	"github.com/squidpro/auth-system/internal/core/domain"
)

// Availability is the answer to a username/email availability probe.
type Availability struct {
	Available bool
	Message   string
}

// RegisterInput carries a unified registration request.
type RegisterInput struct {
	Username       string
	Name           string
	Email          string
	Password       string
	RepeatPassword string
	StellarAddress string
	Roles          []domain.Role
}

// LegacyRegisterInput carries a role-scoped registration on the deprecated
// /suppliers/register and /reviewers/register paths, which predate
// usernames and passwords.
type LegacyRegisterInput struct {
	Name            string
	Email           string
	StellarAddress  string
	Specializations []string
}

type AuthService interface {
	CheckUsername(ctx context.Context, username string) (Availability, error)
	CheckEmail(ctx context.Context, email string) (Availability, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	RegisterLegacy(ctx context.Context, role domain.Role, in LegacyRegisterInput) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*domain.Account, *domain.Session, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, accountID string) error
	// Authenticate resolves either credential variant to its account.
	Authenticate(ctx context.Context, cred domain.Credential) (*domain.Account, error)
	GrantRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error)
}

type SessionManager interface {
	Create(ctx context.Context, accountID string) (*domain.Session, error)
	Validate(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, accountID string) error
}

type RoleResolver interface {
	Resolve(ctx context.Context, account *domain.Account) *domain.RoleProfiles
}

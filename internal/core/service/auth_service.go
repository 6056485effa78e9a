package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
)

// API key prefixes. sup_/rev_ are the legacy role-scoped prefixes clients
// already dispatch on; sq_ covers buyer-only accounts that never had a
// role-scoped key.
const (
	keyPrefixSupplier = "sup_"
	keyPrefixReviewer = "rev_"
	keyPrefixBuyer    = "sq_"
)

// dummyHash is compared against when login hits an unknown username, so the
// request costs the same bcrypt work as a wrong password on a real account.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("squidpro.no-such-user"), bcrypt.DefaultCost)

// AuthService implements registration, login, availability checks, and
// credential resolution over the account repository and session manager.
type AuthService struct {
	repo     ports.AccountRepository
	sessions ports.SessionManager
	log      zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, sessions ports.SessionManager, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, sessions: sessions, log: log}
}

// CheckUsername is the advisory availability probe behind the signup form.
// A format failure reads as unavailable; the authoritative check happens
// inside Register via the store's unique index.
func (s *AuthService) CheckUsername(ctx context.Context, username string) (ports.Availability, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return ports.Availability{Available: false, Message: err.Error()}, nil
	}
	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return ports.Availability{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return ports.Availability{Available: false, Message: "username is already taken"}, nil
	}
	return ports.Availability{Available: true, Message: "username is available"}, nil
}

// CheckEmail is the advisory availability probe for the email field.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (ports.Availability, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return ports.Availability{Available: false, Message: err.Error()}, nil
	}
	taken, err := s.repo.EmailTaken(ctx, email)
	if err != nil {
		return ports.Availability{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ports.Availability{Available: false, Message: "email is already registered"}, nil
	}
	return ports.Availability{Available: true, Message: "email is available"}, nil
}

// Register creates an account with the requested role set. All validation
// runs before any mutation, and the single insert is atomic: either the
// full account exists afterwards or nothing does.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	roles, err := domain.NormalizeRoles(in.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:       in.Username,
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   string(hash),
		StellarAddress: in.StellarAddress,
		Roles:          roles,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	account.LegacyKeys, err = mintKeys(roles, now)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("account_id", created.ID).
		Str("username", created.Username).
		Interface("roles", created.Roles).
		Msg("account registered")
	return created, nil
}

// RegisterLegacy serves the deprecated role-scoped registration paths.
// Those forms never collected a username or password, so the account gets a
// derived username and an unrecoverable random password: until the owner
// migrates through the unified flow, the minted API key is the only way in.
func (s *AuthService) RegisterLegacy(ctx context.Context, role domain.Role, in ports.LegacyRegisterInput) (*domain.Account, error) {
	if role != domain.RoleSupplier && role != domain.RoleReviewer {
		return nil, domain.ErrInvalidRole
	}
	if err := domain.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidateStellarAddress(in.StellarAddress); err != nil {
		return nil, err
	}

	randomPassword, err := randomHex(16)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roles := []domain.Role{domain.RoleBuyer, role}
	now := time.Now().UTC()
	keys, err := mintKeys(roles, now)
	if err != nil {
		return nil, err
	}

	base := usernameFromEmail(in.Email)
	for attempt := 0; attempt < 3; attempt++ {
		username := base
		if attempt > 0 {
			suffix, err := randomHex(2)
			if err != nil {
				return nil, fmt.Errorf("generate username suffix: %w", err)
			}
			username = truncate(base, 45) + "_" + suffix
		}

		account := &domain.Account{
			Username:        username,
			Name:            in.Name,
			Email:           in.Email,
			PasswordHash:    string(hash),
			StellarAddress:  in.StellarAddress,
			Roles:           roles,
			LegacyKeys:      keys,
			Specializations: in.Specializations,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		created, err := s.repo.Create(ctx, account)
		if errors.Is(err, domain.ErrDuplicateUsername) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log.Info().
			Str("account_id", created.ID).
			Str("role", string(role)).
			Msg("legacy account registered")
		return created, nil
	}
	return nil, domain.ErrDuplicateUsername
}

// Login verifies the password and mints a session. Unknown usernames and
// wrong passwords produce the same error after the same bcrypt work.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Account, *domain.Session, error) {
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrAccountNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return account, session, nil
}

// Logout revokes the session. Always succeeds for unknown tokens.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// LogoutAll revokes every session the account holds.
func (s *AuthService) LogoutAll(ctx context.Context, accountID string) error {
	return s.sessions.RevokeAll(ctx, accountID)
}

// Authenticate resolves a credential to its account. Session tokens go
// through the session manager; legacy API keys are checked directly against
// the account store. Keys without a known prefix are rejected up front.
func (s *AuthService) Authenticate(ctx context.Context, cred domain.Credential) (*domain.Account, error) {
	switch cred.Kind {
	case domain.CredentialSessionToken:
		accountID, err := s.sessions.Validate(ctx, cred.Value)
		if err != nil {
			return nil, err
		}
		account, err := s.repo.FindByID(ctx, accountID)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return account, err
	case domain.CredentialLegacyAPIKey:
		if !strings.HasPrefix(cred.Value, keyPrefixSupplier) &&
			!strings.HasPrefix(cred.Value, keyPrefixReviewer) &&
			!strings.HasPrefix(cred.Value, keyPrefixBuyer) {
			return nil, domain.ErrUnauthorized
		}
		account, err := s.repo.FindByLegacyKey(ctx, cred.Value)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return account, err
	default:
		return nil, domain.ErrUnauthorized
	}
}

// GrantRole adds a role to an existing account, minting the role's API key.
// Granting an already-held role is a no-op. Roles are never removed.
func (s *AuthService) GrantRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	key, err := mintKey(role, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return s.repo.AddRole(ctx, accountID, role, key)
}

func validateRegistration(in ports.RegisterInput) error {
	if err := domain.ValidateUsername(in.Username); err != nil {
		return err
	}
	if err := domain.ValidateName(in.Name); err != nil {
		return err
	}
	if err := domain.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return err
	}
	if in.Password != in.RepeatPassword {
		return domain.ErrPasswordsDontMatch
	}
	return domain.ValidateStellarAddress(in.StellarAddress)
}

// mintKeys creates one API key per granted role. Buyer-only accounts get a
// single sq_ key so the registration response always carries a usable key.
func mintKeys(roles []domain.Role, now time.Time) ([]domain.LegacyAPIKey, error) {
	keys := make([]domain.LegacyAPIKey, 0, len(roles))
	for _, role := range roles {
		if role == domain.RoleBuyer && len(roles) > 1 {
			continue
		}
		key, err := mintKey(role, now)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func mintKey(role domain.Role, now time.Time) (domain.LegacyAPIKey, error) {
	var prefix string
	switch role {
	case domain.RoleSupplier:
		prefix = keyPrefixSupplier
	case domain.RoleReviewer:
		prefix = keyPrefixReviewer
	default:
		prefix = keyPrefixBuyer
	}
	raw, err := randomHex(16)
	if err != nil {
		return domain.LegacyAPIKey{}, fmt.Errorf("generate api key: %w", err)
	}
	return domain.LegacyAPIKey{Key: prefix + raw, Role: role, CreatedAt: now}, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// usernameFromEmail derives a pattern-conforming username from the email
// local part for legacy registrations.
func usernameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := truncate(b.String(), 50)
	for len(name) < 3 {
		name += "_"
	}
	return name
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

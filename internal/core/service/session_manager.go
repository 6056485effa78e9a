package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
)

const (
	// tokenBytes gives 256 bits of entropy per token, well above the
	// 128-bit floor required to resist brute-force guessing.
	tokenBytes = 32

	// expiredRetention keeps a lapsed session readable long enough to
	// answer SESSION_EXPIRED instead of SESSION_INVALID. After the window
	// the backing store drops the record entirely.
	expiredRetention = time.Hour

	defaultSessionTTL = 24 * time.Hour
)

// SessionManagerService owns the bearer-token lifecycle: mint on login,
// validate on every authenticated request, revoke on logout.
type SessionManagerService struct {
	store ports.SessionStore
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

func NewSessionManager(store ports.SessionStore, ttl time.Duration, log zerolog.Logger) *SessionManagerService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManagerService{store: store, ttl: ttl, log: log, now: time.Now}
}

// Create mints a new session bound to the account. The token comes from a
// cryptographically secure random source; collisions are not a practical
// concern at 256 bits.
func (m *SessionManagerService) Create(ctx context.Context, accountID string) (*domain.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := m.now().UTC()
	session := &domain.Session{
		Token:     token,
		AccountID: accountID,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Put(ctx, session, m.ttl+expiredRetention); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// Validate resolves a token to its account id. Expired sessions are
// rejected, never silently renewed.
func (m *SessionManagerService) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrSessionInvalid
	}
	session, err := m.store.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if session.Expired(m.now().UTC()) {
		return "", domain.ErrSessionExpired
	}
	return session.AccountID, nil
}

// Revoke destroys a session. Revoking a nonexistent or already-revoked
// token succeeds, so clients can retry logout freely and absence is never
// leaked.
func (m *SessionManagerService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// RevokeAll implements "sign out everywhere" for one account.
func (m *SessionManagerService) RevokeAll(ctx context.Context, accountID string) error {
	n, err := m.store.DeleteAll(ctx, accountID)
	if err != nil {
		return err
	}
	m.log.Info().Str("account_id", accountID).Int("revoked", n).Msg("revoked all sessions")
	return nil
}

// StartSweeper runs the periodic expiry sweep until ctx is cancelled. The
// sweep only tidies bookkeeping; foreground validation never waits on it.
func (m *SessionManagerService) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := m.store.Sweep(ctx)
				if err != nil {
					m.log.Warn().Err(err).Msg("session sweep failed")
					continue
				}
				if n > 0 {
					m.log.Debug().Int("swept", n).Msg("session sweep completed")
				}
			}
		}
	}()
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

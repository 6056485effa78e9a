package ports

import (
	"context"
	"time"

	"github.com/squidpro/auth-system/internal/core/domain"
)

// SessionStore is the backing storage for bearer session tokens.
//
// Get returns domain.ErrSessionInvalid for a token that does not exist.
// Implementations keep expired sessions retrievable for a short retention
// window so the manager can report domain.ErrSessionExpired distinctly;
// after the window they disappear and degrade to ErrSessionInvalid.
type SessionStore interface {
	Put(ctx context.Context, session *domain.Session, retention time.Duration) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	// Delete is idempotent: deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
	DeleteAll(ctx context.Context, accountID string) (int, error)
	// Sweep removes index entries for sessions that have already lapsed.
	// Foreground validation never depends on it.
	Sweep(ctx context.Context) (int, error)
}

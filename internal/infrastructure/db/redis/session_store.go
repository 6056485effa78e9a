package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/squidpro/auth-system/internal/core/domain"
)

// Key formats:
//
//	session:<token>            -> JSON session record, TTL = session TTL + retention
//	account_sessions:<account> -> set of the account's live tokens
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

type sessionRecord struct {
	AccountID string    `json:"account_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Put stores the session under its token. Redis expires the key on its own
// after the retention window, so even an idle store converges without a
// sweep.
func (s *SessionStore) Put(ctx context.Context, session *domain.Session, retention time.Duration) error {
	payload, err := json.Marshal(sessionRecord{
		AccountID: session.AccountID,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.Token), payload, retention)
	pipe.SAdd(ctx, accountKey(session.AccountID), session.Token)
	pipe.Expire(ctx, accountKey(session.AccountID), retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get returns the session for a token. A missing key reads as an invalid
// session rather than a storage error.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{
		Token:     token,
		AccountID: rec.AccountID,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Delete removes a session. Deleting an absent token is a no-op.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	session, err := s.Get(ctx, token)
	if err == domain.ErrSessionInvalid {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	pipe.SRem(ctx, accountKey(session.AccountID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteAll removes every session belonging to the account and returns how
// many were dropped.
func (s *SessionStore) DeleteAll(ctx context.Context, accountID string) (int, error) {
	tokens, err := s.client.SMembers(ctx, accountKey(accountID)).Result()
	if err != nil {
		return 0, fmt.Errorf("list account sessions: %w", err)
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, accountKey(accountID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("delete account sessions: %w", err)
	}
	return len(tokens), nil
}

// Sweep drops index-set members whose session keys have already expired.
// Redis removes the session keys themselves via TTL; this only tidies the
// per-account sets so they do not accumulate dead tokens.
func (s *SessionStore) Sweep(ctx context.Context) (int, error) {
	swept := 0
	iter := s.client.Scan(ctx, 0, "account_sessions:*", 100).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		tokens, err := s.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return swept, fmt.Errorf("sweep %s: %w", setKey, err)
		}
		for _, token := range tokens {
			n, err := s.client.Exists(ctx, sessionKey(token)).Result()
			if err != nil {
				return swept, fmt.Errorf("sweep %s: %w", setKey, err)
			}
			if n == 0 {
				if err := s.client.SRem(ctx, setKey, token).Err(); err != nil {
					return swept, fmt.Errorf("sweep %s: %w", setKey, err)
				}
				swept++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return swept, fmt.Errorf("sweep scan: %w", err)
	}
	return swept, nil
}

func sessionKey(token string) string {
	return "session:" + token
}

func accountKey(accountID string) string {
	return "account_sessions:" + accountID
}

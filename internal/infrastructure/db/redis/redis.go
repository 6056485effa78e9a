package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName     = "squidpro-auth"
	defaultTimeout = 5 * time.Second
)

// Config captures the settings for the session store connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect dials the session store and validates connectivity with a ping.
// The client names itself squidpro-auth so its connections show up
// attributably in CLIENT LIST. A default timeout is applied when none is
// provided.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		DB:         cfg.DB,
		ClientName: clientName,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8100"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	SessionTTL    time.Duration `env:"SESSION_TTL,            default=24h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=10m"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Ledger LedgerConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=squidpro_auth"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// LedgerConfig points at the external supplier and reviewer subsystems the
// role resolver reads stat snapshots from.
type LedgerConfig struct {
	SupplierURL string        `env:"SUPPLIER_LEDGER_URL, default=http://localhost:8200"`
	ReviewerURL string        `env:"REVIEWER_LEDGER_URL, default=http://localhost:8300"`
	Secret      string        `env:"LEDGER_SECRET"`
	Timeout     time.Duration `env:"LEDGER_TIMEOUT, default=3s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

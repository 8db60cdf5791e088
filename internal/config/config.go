package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Match strategies for resolving bookmarks against tracks.
const (
	MatchStrategyFuzzy = "fuzzy"
	MatchStrategyExact = "exact"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress    string        `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURI   string        `env:"DATABASE_URI"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTSecretFile string        `env:"JWT_SECRET_FILE,file"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	MatchStrategy string        `env:"MATCH_STRATEGY" envDefault:"fuzzy"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`

	WorkerPoolSize       int           `env:"WORKER_POOL_SIZE" envDefault:"4"`
	ArchiveSweepInterval time.Duration `env:"ARCHIVE_SWEEP_INTERVAL" envDefault:"1m"`
	ArchiveSweepBatch    int           `env:"ARCHIVE_SWEEP_BATCH" envDefault:"32"`
	ReconcileInterval    time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`

	OutboxInterval    time.Duration `env:"OUTBOX_INTERVAL" envDefault:"2s"`
	OutboxBatch       int           `env:"OUTBOX_BATCH" envDefault:"64"`
	OutboxMaxAttempts int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"5"`
	KafkaBrokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopicPrefix  string        `env:"KAFKA_TOPIC_PREFIX" envDefault:"parceltrack"`

	AdminPhones     []string      `env:"ADMIN_PHONES" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

const (
	defaultRunAddress           = ":8080"
	defaultJWTSecret            = "change-me-in-production"
	defaultTokenTTL             = 24 * time.Hour
	defaultBcryptCost           = 10
	defaultWorkerPoolSize       = 4
	defaultArchiveSweepInterval = time.Minute
	defaultArchiveSweepBatch    = 32
	defaultReconcileInterval    = 5 * time.Minute
	defaultOutboxInterval       = 2 * time.Second
	defaultOutboxBatch          = 64
	defaultOutboxMaxAttempts    = 5
	defaultShutdownTimeout      = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], environ())
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

func load(args []string, environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("parceltrack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		adminPhonesStr     = strings.Join(cfg.AdminPhones, ",")
		kafkaBrokersStr    = strings.Join(cfg.KafkaBrokers, ",")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Auth token lifetime")
	fs.StringVar(&cfg.MatchStrategy, "match-strategy", cfg.MatchStrategy, "Bookmark matching: fuzzy or exact")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent archive workers")
	fs.StringVar(&kafkaBrokersStr, "kafka-brokers", kafkaBrokersStr, "Comma separated Kafka brokers")
	fs.StringVar(&adminPhonesStr, "admin-phones", adminPhonesStr, "Comma separated phones granted the admin role")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitList(kafkaBrokersStr)
	cfg.AdminPhones = splitList(adminPhonesStr)

	if cfg.JWTSecretFile != "" {
		cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecretFile)
	}

	cfg.normalize()

	switch cfg.MatchStrategy {
	case MatchStrategyFuzzy, MatchStrategyExact:
	default:
		return nil, fmt.Errorf("unknown match strategy %q", cfg.MatchStrategy)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func (c *Config) normalize() {
	if c.RunAddress == "" {
		c.RunAddress = defaultRunAddress
	}
	if c.JWTSecret == "" {
		c.JWTSecret = defaultJWTSecret
	}
	if c.MatchStrategy == "" {
		c.MatchStrategy = MatchStrategyFuzzy
	}
	positiveDuration(&c.TokenTTL, defaultTokenTTL)
	positiveDuration(&c.ArchiveSweepInterval, defaultArchiveSweepInterval)
	positiveDuration(&c.ReconcileInterval, defaultReconcileInterval)
	positiveDuration(&c.OutboxInterval, defaultOutboxInterval)
	positiveDuration(&c.ShutdownTimeout, defaultShutdownTimeout)
	positiveInt(&c.BcryptCost, defaultBcryptCost)
	positiveInt(&c.WorkerPoolSize, defaultWorkerPoolSize)
	positiveInt(&c.ArchiveSweepBatch, defaultArchiveSweepBatch)
	positiveInt(&c.OutboxBatch, defaultOutboxBatch)
	positiveInt(&c.OutboxMaxAttempts, defaultOutboxMaxAttempts)
}

// IsAdminPhone reports whether registrations from phone get the admin role.
func (c *Config) IsAdminPhone(phone string) bool {
	for _, p := range c.AdminPhones {
		if p == phone {
			return true
		}
	}
	return false
}

func positiveDuration(v *time.Duration, def time.Duration) {
	if *v <= 0 {
		*v = def
	}
}

func positiveInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	dErrors "aegis/pkg/domain-errors"
)

// DevSigningSecret is the placeholder secret used in local development. A
// hardened deployment refuses to start with it.
const DevSigningSecret = "dev-secret-change-in-production"

// Config captures process-wide configuration, loaded once at startup and
// never mutated afterwards.
type Config struct {
	Addr     string `envconfig:"ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Hardened refuses known-insecure settings instead of limping along.
	Hardened bool `envconfig:"HARDENED" default:"false"`

	SigningSecret string        `envconfig:"SIGNING_SECRET"`
	AccessTTL     time.Duration `envconfig:"ACCESS_TTL" default:"15m"`
	RefreshTTL    time.Duration `envconfig:"REFRESH_TTL" default:"720h"`

	// AuditSink selects where security events land: stderr, redis, kafka,
	// or postgres. stderr needs no further settings.
	AuditSink       string `envconfig:"AUDIT_SINK" default:"stderr"`
	AuditBufferSize int    `envconfig:"AUDIT_BUFFER_SIZE" default:"4096"`

	RedisURL    string `envconfig:"REDIS_URL"`
	RedisStream string `envconfig:"REDIS_STREAM" default:"aegis.security-events"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"aegis.security-events"`

	PostgresURL string `envconfig:"POSTGRES_URL"`
}

// FromEnv builds a Config from AEGIS_-prefixed environment variables so main
// stays lean. The development signing secret is substituted when none is set;
// Validate rejects it in hardened mode.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("AEGIS", &cfg); err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeConfig, "could not parse environment")
	}
	if cfg.SigningSecret == "" {
		cfg.SigningSecret = DevSigningSecret
	}
	return cfg, nil
}

// Validate enforces startup invariants. In hardened mode a missing or
// placeholder signing secret is fatal: the process must not authorize traffic
// under a weak secret.
func (c Config) Validate() error {
	if c.Hardened && (c.SigningSecret == "" || c.SigningSecret == DevSigningSecret) {
		return dErrors.New(dErrors.CodeConfig, "hardened mode requires a non-default signing secret")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return dErrors.New(dErrors.CodeConfig, "token TTLs must be positive")
	}
	switch c.AuditSink {
	case "stderr", "redis", "kafka", "postgres":
	default:
		return dErrors.Newf(dErrors.CodeConfig, "unknown audit sink %q", c.AuditSink)
	}
	return nil
}

// Package config loads runtime settings from the environment.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mygenetics/reportnav/internal/runtime"
)

// Prefix is prepended to every variable name, e.g. REPORTNAV_HTTP_ADDR.
const Prefix = "REPORTNAV"

// DefaultEnvFile is loaded when present.
const DefaultEnvFile = ".env"

// Backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds every setting of the service.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	// GraphFile is an optional YAML graph replacing the built-in report.
	GraphFile string `envconfig:"GRAPH_FILE"`

	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	RedisURL       string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	RedisPrefix    string        `envconfig:"REDIS_PREFIX" default:"reportnav:"`
	LockTTL        time.Duration `envconfig:"LOCK_TTL" default:"5s"`

	// SessionEncryptionKey is a base64 AES-256 key. When set, sessions are
	// sealed before they reach the backend. SessionFallbackKeys hold retired
	// keys that may still decrypt live sessions.
	SessionEncryptionKey string   `envconfig:"SESSION_ENCRYPTION_KEY"`
	SessionFallbackKeys  []string `envconfig:"SESSION_FALLBACK_KEYS"`

	// RedactQuestions masks e-mail addresses and phone numbers in stored
	// questions. RedactPatterns adds further expressions, separated by ";".
	RedactQuestions bool     `envconfig:"REDACT_QUESTIONS" default:"true"`
	RedactPatterns  Patterns `envconfig:"REDACT_PATTERNS"`

	ContentBackend string `envconfig:"CONTENT_BACKEND" default:"memory"`
	ContentDSN     string `envconfig:"CONTENT_DSN"`

	// InteractionLog records every exchange in the SQL content database.
	// It has no effect with the memory content backend.
	InteractionLog bool `envconfig:"INTERACTION_LOG" default:"true"`

	NoOpPolicy string        `envconfig:"NOOP_POLICY" default:"silent"`
	RateLimit  int           `envconfig:"RATE_LIMIT" default:"5"`
	RateWindow time.Duration `envconfig:"RATE_WINDOW" default:"1m"`

	MaxInputSize int `envconfig:"MAX_INPUT_SIZE" default:"4096"`

	// OpenAI uses the provider's conventional unprefixed variables.
	OpenAI OpenAI `ignored:"true"`
}

// OpenAI configures the question answerer. It is read from OPENAI_*.
type OpenAI struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL"`
	Model   string `envconfig:"MODEL" default:"gpt-4o-mini"`
}

// Patterns is a ";"-separated list of regular expressions. Commas are common
// in expressions, so the default list separator does not fit.
type Patterns []string

// Decode implements envconfig.Decoder.
func (p *Patterns) Decode(value string) error {
	*p = nil
	for _, part := range strings.Split(value, ";") {
		if part = strings.TrimSpace(part); part != "" {
			*p = append(*p, part)
		}
	}
	return nil
}

// Load reads envFile (if any) into the process environment and decodes the
// configuration. An empty envFile means DefaultEnvFile, which may be absent;
// an explicit file must exist.
func Load(envFile string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if err := envconfig.Process("OPENAI", &cfg.OpenAI); err != nil {
		return nil, fmt.Errorf("failed to process openai config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports inconsistent settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, fmt.Errorf("%s_REDIS_URL is required for the redis session backend", Prefix))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q (expected memory or redis)", c.SessionBackend))
	}

	switch c.ContentBackend {
	case BackendMemory:
	case BackendSQLite, BackendPostgres:
		if c.ContentDSN == "" {
			errs = append(errs, fmt.Errorf("%s_CONTENT_DSN is required for the %s content backend", Prefix, c.ContentBackend))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown content backend %q (expected memory, sqlite or postgres)", c.ContentBackend))
	}

	if _, err := runtime.ParseNoOpPolicy(c.NoOpPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative"))
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		errs = append(errs, fmt.Errorf("rate window must be positive"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("session ttl must not be negative"))
	}
	if c.MaxInputSize <= 0 {
		errs = append(errs, fmt.Errorf("max input size must be positive"))
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		errs = append(errs, err)
	}
	if len(c.SessionFallbackKeys) > 0 && c.SessionEncryptionKey == "" {
		errs = append(errs, fmt.Errorf("%s_SESSION_FALLBACK_KEYS requires %s_SESSION_ENCRYPTION_KEY", Prefix, Prefix))
	}

	return errors.Join(errs...)
}

// EncryptionKeys decodes the session keys. active is nil when encryption is
// disabled.
func (c *Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.SessionEncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(c.SessionEncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%s_SESSION_ENCRYPTION_KEY: %w", Prefix, err)
	}
	for i, k := range c.SessionFallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("%s_SESSION_FALLBACK_KEYS[%d]: %w", Prefix, i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

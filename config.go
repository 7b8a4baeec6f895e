package castlegate

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// Config is the process-wide configuration, built once at startup and passed
// by injection. Core logic never reads ambient state.
type Config struct {
	ListenAddr string
	DSN        string
	PublicDir  string

	SigningSecret string
	// TokenTTL of zero means issued tokens carry no expiry and only session
	// membership bounds their life.
	TokenTTL time.Duration
	// BadPasswordLimit of zero disables lockout entirely.
	BadPasswordLimit int
	// ManualEnabling makes new accounts start disabled until an external
	// action enables them.
	ManualEnabling bool
}

func (c *Config) Validate() error {
	if c.SigningSecret == "" {
		return errors.New("signing secret is required", errors.CategoryValidation).
			WithTextCode(TextCodeValidationError)
	}
	return nil
}

// ConfigFromEnv reads configuration from the environment with defaults. The
// caller loads any .env file first.
func ConfigFromEnv() *Config {
	cfg := &Config{
		ListenAddr:       ":" + envOr("PORT", "5000"),
		DSN:              envOr("DATABASE_DSN", "file:castlegate.db?cache=shared"),
		PublicDir:        envOr("PUBLIC_DIR", "public"),
		SigningSecret:    os.Getenv("JWT_SECRET"),
		ManualEnabling:   strings.EqualFold(os.Getenv("MANUAL_USER_ENABLING"), "TRUE"),
		BadPasswordLimit: envInt("BAD_PASSWORD_LIMIT", 0),
	}

	if raw := os.Getenv("TOKEN_EXPIRATION_TIME"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil {
			cfg.TokenTTL = ttl
		} else if secs, err := strconv.Atoi(raw); err == nil {
			cfg.TokenTTL = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

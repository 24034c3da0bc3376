// Package config loads the board's environment configuration.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvProduction is the BOARD_ENV value that enables production checks.
const EnvProduction = "production"

// Config is the board server configuration.
type Config struct {
	Addr               string        `env:"BOARD_ADDR"                envDefault:":8080"`
	Env                string        `env:"BOARD_ENV"                 envDefault:"development"`
	APIURL             string        `env:"BOARD_API_URL"             envDefault:"http://localhost:8000"`
	APITimeout         time.Duration `env:"BOARD_API_TIMEOUT"         envDefault:"10s"`
	CSRFKeyHex         string        `env:"BOARD_CSRF_KEY"`
	TrustedOrigins     []string      `env:"BOARD_TRUSTED_ORIGINS"     envSeparator:"," envDefault:"localhost:8080,127.0.0.1:8080"`
	SessionTTL         time.Duration `env:"BOARD_SESSION_TTL"         envDefault:"30m"`
	RateLimit          int           `env:"BOARD_RATE_LIMIT"          envDefault:"10"`
	SlowRequestMs      int           `env:"BOARD_SLOW_REQUEST_MS"     envDefault:"200"`
	NotifyParticipants bool          `env:"BOARD_NOTIFY_PARTICIPANTS" envDefault:"false"`
	ResendKey          string        `env:"BOARD_RESEND_KEY"`
	EmailFrom          string        `env:"BOARD_EMAIL_FROM"          envDefault:"Activity Board <noreply@mergington.edu>"`
}

// DevAPIConfig is the reference Activities API configuration.
type DevAPIConfig struct {
	Addr   string `env:"BOARD_DEVAPI_ADDR" envDefault:":8000"`
	DBPath string `env:"BOARD_DEVAPI_DB"   envDefault:"activities.db"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from the given files, skipping any that do not
// exist. Variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads .env (when present) and the environment into a Config.
// POST: Returns a Config with defaults applied, or the first parse error
func Load() (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDevAPI reads .env (when present) and the environment into a DevAPIConfig.
func LoadDevAPI() (DevAPIConfig, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return DevAPIConfig{}, err
	}
	var cfg DevAPIConfig
	if err := ParseEnv(&cfg); err != nil {
		return DevAPIConfig{}, err
	}
	return cfg, nil
}

// IsProduction reports whether production checks apply.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKey decodes BOARD_CSRF_KEY (hex-encoded, 32 bytes).
// In production the key MUST be set. Elsewhere a random key is generated and
// generated reports true.
func (c Config) CSRFKey() (key []byte, generated bool, err error) {
	if c.CSRFKeyHex != "" {
		key, err := hex.DecodeString(c.CSRFKeyHex)
		if err != nil || len(key) != 32 {
			return nil, false, errors.New("BOARD_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, false, nil
	}
	if c.IsProduction() {
		return nil, false, errors.New("BOARD_CSRF_KEY is required in production")
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate CSRF key: %w", err)
	}
	return key, true, nil
}

// SlowRequestThreshold is the duration above which requests are logged as slow.
func (c Config) SlowRequestThreshold() time.Duration {
	return time.Duration(c.SlowRequestMs) * time.Millisecond
}

// Package config loads runtime settings from the environment and the prize
// catalog from YAML.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds the process settings. It is read once at startup.
type Config struct {
	Addr string `env:"LOTTERY_ADDR,default=:8080"`

	Store       string `env:"LOTTERY_STORE,default=file"`
	DataDir     string `env:"LOTTERY_DATA_DIR,default=./data"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisDB     int    `env:"REDIS_DB,default=0"`
	RedisPrefix string `env:"REDIS_PREFIX"`

	CatalogPath    string  `env:"LOTTERY_CATALOG"`
	WinProbability float64 `env:"LOTTERY_WIN_PROBABILITY,default=0.3"`

	AdminStudentID string `env:"LOTTERY_ADMIN_STUDENT_ID,default=admin"`
	AdminName      string `env:"LOTTERY_ADMIN_NAME,default=Administrator"`

	SessionTTL      time.Duration `env:"LOTTERY_SESSION_TTL,default=1h"`
	JanitorSchedule string        `env:"LOTTERY_JANITOR_SCHEDULE,default=@every 10m"`
	RatePerMinute   int           `env:"LOTTERY_RATE_PER_MINUTE,default=60"`

	Verbose bool `env:"LOTTERY_VERBOSE,default=false"`
}

// Load reads an optional .env file and then decodes the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when LOTTERY_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown LOTTERY_STORE %q", c.Store)
	}
	if c.WinProbability < 0 || c.WinProbability > 1 {
		return fmt.Errorf("LOTTERY_WIN_PROBABILITY must be within [0,1], got %v", c.WinProbability)
	}
	if c.AdminStudentID == "" {
		return errors.New("LOTTERY_ADMIN_STUDENT_ID must not be empty")
	}
	if c.RatePerMinute <= 0 {
		return fmt.Errorf("LOTTERY_RATE_PER_MINUTE must be positive, got %d", c.RatePerMinute)
	}
	return nil
}

package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	bk "github.com/tablebook/booking-client/booking"
)

const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all configuration values.
type Config struct {
	AppPort       string `mapstructure:"APP_PORT"`
	BookingAPIURL string `mapstructure:"BOOKING_API_URL"`

	StorageDriver  string `mapstructure:"STORAGE_DRIVER"`
	StoragePath    string `mapstructure:"STORAGE_PATH"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	StorageProfile string `mapstructure:"STORAGE_PROFILE"`

	// Outgoing calls to the booking API.
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CacheTTL          time.Duration `mapstructure:"CACHE_TTL"`
	RequestsPerSecond float64       `mapstructure:"REQUESTS_PER_SECOND"`
	RequestBurst      int           `mapstructure:"REQUEST_BURST"`

	// Business day.
	OpeningTime  string `mapstructure:"OPENING_TIME"`
	ClosingTime  string `mapstructure:"CLOSING_TIME"`
	SlotInterval int    `mapstructure:"SLOT_INTERVAL"`
}

func (c Config) Schedule() bk.Schedule {
	return bk.Schedule{Open: c.OpeningTime, Close: c.ClosingTime, Interval: c.SlotInterval}
}

// Load reads a .env file when there is one, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Default().With("component", "config").Info("no .env file found, using environment variables only")
	}

	return FromEnv()
}

func FromEnv() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "9090")
	v.SetDefault("BOOKING_API_URL", "http://localhost:5000")
	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("STORAGE_PATH", "data/booking-client.gob")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("STORAGE_PROFILE", "default")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("CACHE_TTL", "0s")
	v.SetDefault("REQUESTS_PER_SECOND", 5)
	v.SetDefault("REQUEST_BURST", 5)
	v.SetDefault("OPENING_TIME", bk.DefaultSchedule.Open)
	v.SetDefault("CLOSING_TIME", bk.DefaultSchedule.Close)
	v.SetDefault("SLOT_INTERVAL", bk.DefaultSchedule.Interval)

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	switch cfg.StorageDriver {
	case StorageMemory:
	case StorageFile:
		if len(cfg.StoragePath) == 0 {
			return Config{}, fmt.Errorf("STORAGE_PATH is required with storage driver '%v'", cfg.StorageDriver)
		}
	case StoragePostgres:
		if len(cfg.DatabaseURL) == 0 {
			return Config{}, fmt.Errorf("DATABASE_URL is required with storage driver '%v'", cfg.StorageDriver)
		}
	default:
		return Config{}, fmt.Errorf("unknown storage driver '%v'", cfg.StorageDriver)
	}

	return cfg, nil
}

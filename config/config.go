package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port           string
	DBPath         string
	OwnerAddress   string
	MinStakeFloor  uint64
	BlocksPerYear  uint64
	BlockInterval  time.Duration
	LogLevel       string
	LogFile        string
	EnableDevLogin bool
}

var ErrNoOwner = errors.New("OWNER_ADDRESS is required")

// Load reads .env (if present) and the process environment.
func Load() (AppConfig, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	getUint := func(k string, def uint64) (uint64, error) {
		v := os.Getenv(k)
		if v == "" {
			return def, nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", k, err)
		}
		return n, nil
	}

	cfg := AppConfig{
		Port:           get("PORT", "8080"),
		DBPath:         get("DB_PATH", "farmyield.db"),
		OwnerAddress:   get("OWNER_ADDRESS", ""),
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFile:        get("LOG_FILE", ""),
		EnableDevLogin: get("ENABLE_DEV_LOGIN", "false") == "true",
	}

	var err error
	if cfg.MinStakeFloor, err = getUint("MIN_STAKE_FLOOR", 1_000_000); err != nil {
		return cfg, err
	}
	if cfg.BlocksPerYear, err = getUint("BLOCKS_PER_YEAR", 52_560); err != nil {
		return cfg, err
	}
	if cfg.BlocksPerYear == 0 {
		return cfg, errors.New("BLOCKS_PER_YEAR must be positive")
	}
	if v := os.Getenv("BLOCK_INTERVAL"); v != "" {
		if cfg.BlockInterval, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("BLOCK_INTERVAL: %w", err)
		}
	}
	return cfg, nil
}

// Validate checks what the HTTP server needs beyond Load's defaults.
func (c AppConfig) Validate() error {
	if c.OwnerAddress == "" {
		return ErrNoOwner
	}
	return nil
}

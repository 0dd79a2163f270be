// Package config reads server settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	MaxAttempts    int
	WordsFile      string
	PublicURL      string
	DatabaseURL    string
	AllowedOrigins []string
	ReapEmptyRooms bool
	EventRate      float64
	EventBurst     int
}

func (c Config) Addr() string { return ":" + c.Port }

// Load reads .env (when present) then the process environment. Every bad
// value is reported, not just the first one.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	var errs error
	cfg := Config{
		Port:           str("PORT", "3000"),
		LogLevel:       str("LOG_LEVEL", "info"),
		LogFormat:      str("LOG_FORMAT", "json"),
		WordsFile:      os.Getenv("WORDS_FILE"),
		PublicURL:      str("PUBLIC_URL", "http://localhost:3000"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AllowedOrigins: list("ALLOWED_ORIGINS", "*"),
	}

	var err error
	cfg.MaxAttempts, err = integer("MAX_ATTEMPTS", 3)
	errs = multierr.Append(errs, err)
	cfg.ReapEmptyRooms, err = boolean("REAP_EMPTY_ROOMS", true)
	errs = multierr.Append(errs, err)
	cfg.EventRate, err = float("EVENT_RATE", 10)
	errs = multierr.Append(errs, err)
	cfg.EventBurst, err = integer("EVENT_BURST", 20)
	errs = multierr.Append(errs, err)

	if cfg.MaxAttempts < 1 {
		errs = multierr.Append(errs, fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", cfg.MaxAttempts))
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.LogFormat))
	}
	return cfg, errs
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func list(key, def string) []string {
	var out []string
	for _, v := range strings.Split(str(key, def), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func integer(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func float(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func boolean(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

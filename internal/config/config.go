// Package config reads sift's runtime settings from the environment.
//
// Settings come from SIFT_* environment variables. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvFile is the dotenv file read by Load when no path is given.
const DefaultEnvFile = ".env"

// Config holds environment-sourced settings.
type Config struct {
	// HistoryDB is the SQLite file resolutions are recorded to. Empty
	// disables history.
	HistoryDB string `envconfig:"SIFT_HISTORY_DB"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"SIFT_LOG_LEVEL" default:"info"`

	// Profile is the CUE profile used when --profile is not given.
	Profile string `envconfig:"SIFT_PROFILE"`

	// SampleRows is the number of rows shown by describe.
	SampleRows int `envconfig:"SIFT_SAMPLE_ROWS" default:"5"`
}

// Load reads envFile (DefaultEnvFile when empty) if it exists, then
// processes the environment into a Config.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	if cfg.SampleRows < 0 {
		return Config{}, fmt.Errorf("SIFT_SAMPLE_ROWS must not be negative, got %d", cfg.SampleRows)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("SIFT_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variable names.
const (
	EnvLangDir       = "QUESTLINE_LANG_DIR"
	EnvLanguage      = "QUESTLINE_LANGUAGE"
	EnvMaxAttempts   = "USER_MAXIMUM_ATTEMPTS"
	EnvThreshold     = "ANSWER_SIMILARITY_THRESHOLD"
	EnvSaveDir       = "QUESTLINE_SAVE_DIR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogDir        = "LOG_DIR"
	EnvLogMaxSizeMB  = "LOG_MAX_SIZE_MB"
	EnvLogMaxBackups = "LOG_MAX_BACKUPS"
	EnvLogMaxAgeDays = "LOG_MAX_AGE_DAYS"
	EnvLogCompress   = "LOG_COMPRESS"
)

// Defaults.
const (
	DefaultLangDir     = "lang"
	DefaultLanguage    = "en"
	DefaultMaxAttempts = 5
	DefaultThreshold   = 0.75
	DefaultLogLevel    = "info"
	DefaultSaveDirName = ".questline/saves"
)

// Config is the full runtime configuration.
type Config struct {
	LangDir     string
	Language    string
	MaxAttempts int
	Threshold   float64
	SaveDir     string
	Log         LogConfig
}

// LogConfig controls the log level and optional rotating file output.
type LogConfig struct {
	Level string
	Dir   string // empty disables file logging

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := LoadDotenvIfPresent(); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment alone and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LangDir:  StringFromEnv(EnvLangDir, DefaultLangDir),
		Language: StringFromEnv(EnvLanguage, DefaultLanguage),
		SaveDir:  StringFromEnv(EnvSaveDir, ""),
		Log: LogConfig{
			Level: StringFromEnv(EnvLogLevel, DefaultLogLevel),
			Dir:   StringFromEnv(EnvLogDir, ""),
		},
	}

	var errs []error
	var err error
	if cfg.MaxAttempts, err = IntFromEnv(EnvMaxAttempts, DefaultMaxAttempts); err != nil {
		errs = append(errs, err)
	}
	if cfg.Threshold, err = Float64FromEnv(EnvThreshold, DefaultThreshold); err != nil {
		errs = append(errs, err)
	}
	if cfg.Log.MaxSizeMB, err = IntFromEnv(EnvLogMaxSizeMB, 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.Log.MaxBackups, err = IntFromEnv(EnvLogMaxBackups, 3); err != nil {
		errs = append(errs, err)
	}
	if cfg.Log.MaxAgeDays, err = IntFromEnv(EnvLogMaxAgeDays, 7); err != nil {
		errs = append(errs, err)
	}
	if cfg.Log.Compress, err = BoolFromEnv(EnvLogCompress, false); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.SaveDir == "" {
		cfg.SaveDir = defaultSaveDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string
	if c.MaxAttempts < 1 {
		problems = append(problems, fmt.Sprintf("%s must be at least 1, got %d", EnvMaxAttempts, c.MaxAttempts))
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		problems = append(problems, fmt.Sprintf("%s must be in (0, 1], got %v", EnvThreshold, c.Threshold))
	}
	if c.Language == "" {
		problems = append(problems, EnvLanguage+" must not be empty")
	}
	if c.Log.Dir != "" && (c.Log.MaxSizeMB <= 0 || c.Log.MaxBackups <= 0 || c.Log.MaxAgeDays <= 0) {
		problems = append(problems, fmt.Sprintf("invalid log rotation: size=%d backups=%d age_days=%d",
			c.Log.MaxSizeMB, c.Log.MaxBackups, c.Log.MaxAgeDays))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func defaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultSaveDirName
	}
	return filepath.Join(home, DefaultSaveDirName)
}

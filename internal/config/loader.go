package config

import (
	"credmerge/internal/archive"
	"credmerge/internal/redaction"
	"credmerge/internal/types"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogsDir    = "/usr/share/responder/logs"
	DefaultOutputPath = "consolidated_hashes.txt"
	DefaultExtension  = ".txt"
	DefaultDebounce   = "2s"
)

// Default returns the configuration used when no file is given
func Default() *types.Config {
	var cfg types.Config
	cfg.Input.LogsDir = DefaultLogsDir
	cfg.Input.Extension = DefaultExtension
	cfg.Input.SortFiles = true
	cfg.Output.Path = DefaultOutputPath
	cfg.Output.Format = "text"
	cfg.Archive.Enabled = true
	cfg.Archive.DateLayout = archive.DefaultDateLayout
	cfg.Redaction.Rules = []redaction.Rule{redaction.PayloadRule}
	cfg.Watch.Debounce = DefaultDebounce
	return &cfg
}

// LoadConfig reads the configuration from the given path on top of the
// defaults. Environment overrides are applied last.
func LoadConfig(path string) (*types.Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	// an empty file keeps the defaults
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyEnvOverrides(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied
func FromEnv() (*types.Config, error) {
	cfg := Default()
	applyEnvOverrides(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *types.Config) {
	if v := os.Getenv("CREDMERGE_LOGS_DIR"); v != "" {
		cfg.Input.LogsDir = v
	}
	if v := os.Getenv("CREDMERGE_OUTPUT"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("CREDMERGE_NO_ARCHIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Archive.Enabled = !b
		}
	}
}

// validateConfig applies defaults to emptied fields and rejects bad values
func validateConfig(cfg *types.Config) error {
	if cfg.Input.LogsDir == "" {
		cfg.Input.LogsDir = DefaultLogsDir
	}
	if cfg.Input.Extension == "" {
		cfg.Input.Extension = DefaultExtension
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	if cfg.Archive.DateLayout == "" {
		cfg.Archive.DateLayout = archive.DefaultDateLayout
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce
	}

	switch cfg.Output.Format {
	case "":
		cfg.Output.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("invalid output.format %q (want text or json)", cfg.Output.Format)
	}

	if _, err := DebounceOf(cfg); err != nil {
		return err
	}
	return nil
}

// DebounceOf parses watch.debounce
func DebounceOf(cfg *types.Config) (time.Duration, error) {
	d, err := time.ParseDuration(cfg.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch.debounce %q: %w", cfg.Watch.Debounce, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid watch.debounce %q: must be positive", cfg.Watch.Debounce)
	}
	return d, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dcm51/Brutus/internal/env"
)

// Search strategies.
const (
	ModeSingle   = "single"
	ModeThreaded = "threaded"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config captures the brutus configuration resolved from defaults, optional files,
// and environment overrides.
type Config struct {
	Mode           string      `yaml:"mode"`
	Workers        int         `yaml:"workers"`
	TrimWhitespace bool        `yaml:"trim_whitespace"`
	Format         string      `yaml:"format"`
	HistoryPath    string      `yaml:"history_path"`
	AuditLog       string      `yaml:"audit_log"`
	MetricsOut     string      `yaml:"metrics_out"`
	Trace          TraceConfig `yaml:"trace"`
}

// TraceConfig controls the optional span file.
type TraceConfig struct {
	File        string  `yaml:"file"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode:    ModeSingle,
		Workers: runtime.NumCPU(),
		Format:  FormatText,
		Trace: TraceConfig{
			SampleRatio: 1,
		},
	}
}

// Load resolves the configuration using defaults, configuration files, and
// environment overrides. The lookup order for configuration files is:
//  1. ~/.brutus/config.yml
//  2. ./brutus.yml
//
// Environment variables prefixed with BRUTUS_ have the highest precedence.
func Load() (Config, error) {
	cfg := Default()

	if err := loadHomeConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLocalConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first setting that cannot drive a run.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeSingle, ModeThreaded:
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", c.Mode, ModeSingle, ModeThreaded)
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", c.Format, FormatText, FormatJSON)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Trace.SampleRatio < 0 || c.Trace.SampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be within [0,1], got %g", c.Trace.SampleRatio)
	}
	return nil
}

func loadHomeConfig(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory means no user config, not a failure.
		return nil
	}
	return loadFile(cfg, filepath.Join(home, ".brutus", "config.yml"))
}

func loadLocalConfig(cfg *Config) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	return loadFile(cfg, filepath.Join(wd, "brutus.yml"))
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

type fileConfig struct {
	Mode           *string          `yaml:"mode"`
	Workers        *int             `yaml:"workers"`
	TrimWhitespace *bool            `yaml:"trim_whitespace"`
	Format         *string          `yaml:"format"`
	HistoryPath    *string          `yaml:"history_path"`
	AuditLog       *string          `yaml:"audit_log"`
	MetricsOut     *string          `yaml:"metrics_out"`
	Trace          *fileTraceConfig `yaml:"trace"`
}

type fileTraceConfig struct {
	File        *string  `yaml:"file"`
	SampleRatio *float64 `yaml:"sample_ratio"`
}

func applyFileConfig(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.Mode != nil {
		cfg.Mode = normalize(*fc.Mode)
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.TrimWhitespace != nil {
		cfg.TrimWhitespace = *fc.TrimWhitespace
	}
	if fc.Format != nil {
		cfg.Format = normalize(*fc.Format)
	}
	if fc.HistoryPath != nil {
		cfg.HistoryPath = strings.TrimSpace(*fc.HistoryPath)
	}
	if fc.AuditLog != nil {
		cfg.AuditLog = strings.TrimSpace(*fc.AuditLog)
	}
	if fc.MetricsOut != nil {
		cfg.MetricsOut = strings.TrimSpace(*fc.MetricsOut)
	}
	if fc.Trace != nil {
		if fc.Trace.File != nil {
			cfg.Trace.File = strings.TrimSpace(*fc.Trace.File)
		}
		if fc.Trace.SampleRatio != nil {
			cfg.Trace.SampleRatio = *fc.Trace.SampleRatio
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if val, ok := env.Lookup("BRUTUS_MODE"); ok {
		cfg.Mode = normalize(val)
	}
	if val, ok := env.Lookup("BRUTUS_WORKERS", "BRUTUS_THREADS"); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parse BRUTUS_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if val, ok := env.Lookup("BRUTUS_TRIM"); ok {
		parsed, err := parseBool(val)
		if err != nil {
			return fmt.Errorf("parse BRUTUS_TRIM: %w", err)
		}
		cfg.TrimWhitespace = parsed
	}
	if val, ok := env.Lookup("BRUTUS_FORMAT"); ok {
		cfg.Format = normalize(val)
	}
	if val, ok := env.Lookup("BRUTUS_HISTORY"); ok {
		cfg.HistoryPath = val
	}
	if val, ok := env.Lookup("BRUTUS_AUDIT_LOG"); ok {
		cfg.AuditLog = val
	}
	if val, ok := env.Lookup("BRUTUS_METRICS_OUT"); ok {
		cfg.MetricsOut = val
	}
	if val, ok := env.Lookup("BRUTUS_TRACE_FILE"); ok {
		cfg.Trace.File = val
	}
	if val, ok := env.Lookup("BRUTUS_TRACE_SAMPLE"); ok {
		ratio, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("parse BRUTUS_TRACE_SAMPLE: %w", err)
		}
		cfg.Trace.SampleRatio = ratio
	}
	return nil
}

func normalize(val string) string {
	return strings.ToLower(strings.TrimSpace(val))
}

func parseBool(val string) (bool, error) {
	switch normalize(val) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", val)
	}
}

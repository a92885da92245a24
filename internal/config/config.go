// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/persist"
	"github.com/jonathan/cv-studio/internal/rendering"
	"github.com/jonathan/cv-studio/internal/types"
)

// Environment variables that override file values.
const (
	EnvStorage     = "CV_STUDIO_STORAGE"
	EnvStateDir    = "CV_STUDIO_STATE_DIR"
	EnvRedisURL    = "REDIS_URL"
	EnvDatabaseURL = "DATABASE_URL"
	EnvChromePath  = "CHROME_PATH"
	EnvPort        = "PORT"
)

// Config represents the CLI configuration that can be loaded from a JSON or
// YAML file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Rendering
	Template string `json:"template,omitempty" yaml:"template,omitempty"` // Template key selected in a fresh session

	// Persistence
	Storage         string `json:"storage,omitempty" yaml:"storage,omitempty"`                     // Storage backend: file, memory, redis, postgres
	StateDir        string `json:"state_dir,omitempty" yaml:"state_dir,omitempty"`                 // Directory of the file backend
	StorageKey      string `json:"storage_key,omitempty" yaml:"storage_key,omitempty"`             // Key of the session envelope
	RedisURL        string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`                 // Redis connection URL
	DatabaseURL     string `json:"database_url,omitempty" yaml:"database_url,omitempty"`           // PostgreSQL connection URL
	QuotaBytes      int    `json:"quota_bytes,omitempty" yaml:"quota_bytes,omitempty"`             // Storage quota of the file and memory backends
	MaxPayloadBytes int    `json:"max_payload_bytes,omitempty" yaml:"max_payload_bytes,omitempty"` // Largest envelope that is written
	DebounceMS      int    `json:"debounce_ms,omitempty" yaml:"debounce_ms,omitempty"`             // Quiet period before a save

	// Server
	Port               int `json:"port,omitempty" yaml:"port,omitempty"`                                   // Preview server port
	RateLimitPerMinute int `json:"rate_limit_per_minute,omitempty" yaml:"rate_limit_per_minute,omitempty"` // API requests per minute per client
	ExportPerMinute    int `json:"export_per_minute,omitempty" yaml:"export_per_minute,omitempty"`         // Export requests per minute per client

	// Export
	ChromePath           string  `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`                       // Chrome binary
	ExportScale          float64 `json:"export_scale,omitempty" yaml:"export_scale,omitempty"`                     // Raster scale, at least 2
	ExportTimeoutSeconds int     `json:"export_timeout_seconds,omitempty" yaml:"export_timeout_seconds,omitempty"` // Bound on one export, 0 for none
	OutputDir            string  `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`                         // Where the CLI writes PDFs

	// Behavior
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Template:             types.DefaultTemplate,
		Storage:              persist.BackendFile,
		StateDir:             DefaultStateDir(),
		StorageKey:           persist.DefaultKey,
		MaxPayloadBytes:      persist.DefaultMaxBytes,
		DebounceMS:           int(persist.DefaultDebounce / time.Millisecond),
		Port:                 8080,
		RateLimitPerMinute:   600,
		ExportPerMinute:      10,
		ExportScale:          capture.DefaultScale,
		ExportTimeoutSeconds: 60,
		OutputDir:            ".",
	}
}

// DefaultStateDir returns the per-user state directory, or a directory in
// the working directory when the user config dir is unknown.
func DefaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cv-studio")
	}
	return ".cv-studio"
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from the environment. Unset variables leave the
// field untouched.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvStorage); v != "" {
		c.Storage = v
	}
	if v := getenv(EnvStateDir); v != "" {
		c.StateDir = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.RedisURL = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv(EnvChromePath); v != "" {
		c.ChromePath = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be a number, got %q", EnvPort, v)
		}
		c.Port = port
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Template != "" && !rendering.Has(c.Template) {
		return fmt.Errorf("config error: unknown template %q (available: %s)", c.Template, strings.Join(rendering.Keys(), ", "))
	}
	if c.Storage != "" && !slices.Contains(persist.Backends, c.Storage) {
		return fmt.Errorf("config error: unknown storage %q (available: %s)", c.Storage, strings.Join(persist.Backends, ", "))
	}
	if c.Storage == persist.BackendRedis && c.RedisURL == "" {
		return fmt.Errorf("config error: 'redis_url' is required for redis storage")
	}
	if c.Storage == persist.BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for postgres storage")
	}

	// Validate numeric ranges
	if c.QuotaBytes < 0 {
		return fmt.Errorf("config error: 'quota_bytes' must be non-negative")
	}
	if c.MaxPayloadBytes < 0 {
		return fmt.Errorf("config error: 'max_payload_bytes' must be non-negative")
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("config error: 'debounce_ms' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RateLimitPerMinute < 0 || c.ExportPerMinute < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}
	if c.ExportScale != 0 && c.ExportScale < capture.MinScale {
		return fmt.Errorf("config error: 'export_scale' must be at least %g", capture.MinScale)
	}
	if c.ExportTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'export_timeout_seconds' must be non-negative")
	}

	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.Storage == "" {
		result.Storage = defaults.Storage
	}
	if result.StateDir == "" {
		result.StateDir = defaults.StateDir
	}
	if result.StorageKey == "" {
		result.StorageKey = defaults.StorageKey
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}

	// Int fields: use default if zero
	if result.QuotaBytes == 0 {
		result.QuotaBytes = defaults.QuotaBytes
	}
	if result.MaxPayloadBytes == 0 {
		result.MaxPayloadBytes = defaults.MaxPayloadBytes
	}
	if result.DebounceMS == 0 {
		result.DebounceMS = defaults.DebounceMS
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimitPerMinute == 0 {
		result.RateLimitPerMinute = defaults.RateLimitPerMinute
	}
	if result.ExportPerMinute == 0 {
		result.ExportPerMinute = defaults.ExportPerMinute
	}
	if result.ExportTimeoutSeconds == 0 {
		result.ExportTimeoutSeconds = defaults.ExportTimeoutSeconds
	}

	// Float fields
	if result.ExportScale == 0 {
		result.ExportScale = defaults.ExportScale
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Debounce returns the save debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ExportTimeout returns the export bound as a duration.
func (c *Config) ExportTimeout() time.Duration {
	return time.Duration(c.ExportTimeoutSeconds) * time.Second
}

// StorageOptions returns the persistence backend settings.
func (c *Config) StorageOptions() persist.Options {
	return persist.Options{
		Backend:     c.Storage,
		Dir:         c.StateDir,
		RedisURL:    c.RedisURL,
		RedisPrefix: "cv-studio:",
		DatabaseURL: c.DatabaseURL,
		QuotaBytes:  c.QuotaBytes,
	}
}

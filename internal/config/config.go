// Package config provides reading and writing of mdkb configuration.
// Supports both global (~/.mdkb/config.yaml) and local (.mdkb/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.mdkb/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is repository-specific config in .mdkb/config.yaml
	ScopeLocal
)

// Author identifies who to attribute CLI-driven operations to in the audit
// log (internal/log). The doc/doc_version tables themselves carry no author
// column (spec.md §3) — this is attribution for the operator, not provenance
// of content.
type Author struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// AI holds defaults for the ai_run dispatch path (spec.md §4.8). Explicit
// per-call Provider always wins; these only seed resolveProvider's fallback
// chain and the remote HTTP client's timeout.
type AI struct {
	DefaultProvider string `yaml:"default_provider,omitempty"`
	DefaultModel    string `yaml:"default_model,omitempty"`
	TimeoutSeconds  *int   `yaml:"timeout_seconds,omitempty"`
}

// Sync holds filesystem-watcher defaults for scan_repo's watch=true path
// (spec.md §4.2).
type Sync struct {
	Watch      *bool `yaml:"watch,omitempty"`
	DebounceMS *int  `yaml:"debounce_ms,omitempty"`
}

// Limits holds size limit configuration options applied during ingestion.
type Limits struct {
	MaxContent    *int64 `yaml:"max_content,omitempty"`
	MaxLineLength *int   `yaml:"max_line_length,omitempty"`
}

// Default limits and AI settings applied when not configured.
const (
	DefaultMaxContent     = 100 * 1024 * 1024 // 100 MB
	DefaultMaxLineLength  = 10 * 1024 * 1024  // 10 MB
	DefaultTimeoutSeconds = 30
	DefaultDebounceMS     = 500
)

// Validation bounds for configuration values.
const (
	MinMaxContent     = 1
	MaxMaxContent     = 10 * 1024 * 1024 * 1024 // 10 GB - reasonable upper bound
	MinMaxLineLength  = 1
	MaxMaxLineLength  = 1024 * 1024 * 1024 // 1 GB
	MinTimeoutSeconds = 1
	MaxTimeoutSeconds = 600
	MinDebounceMS     = 0
	MaxDebounceMS     = 3_600_000
)

// Config contains configuration for mdkb.
type Config struct {
	Author Author `yaml:"author,omitempty"`
	AI     AI     `yaml:"ai,omitempty"`
	Sync   Sync   `yaml:"sync,omitempty"`
	Limits Limits `yaml:"limits,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.Limits.MaxContent != nil {
		v := *c.Limits.MaxContent
		if v < MinMaxContent || v > MaxMaxContent {
			return fmt.Errorf("%w: max_content must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxContent, MaxMaxContent, v)
		}
	}
	if c.Limits.MaxLineLength != nil {
		v := *c.Limits.MaxLineLength
		if v < MinMaxLineLength || v > MaxMaxLineLength {
			return fmt.Errorf("%w: max_line_length must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxLineLength, MaxMaxLineLength, v)
		}
	}
	if c.AI.TimeoutSeconds != nil {
		v := *c.AI.TimeoutSeconds
		if v < MinTimeoutSeconds || v > MaxTimeoutSeconds {
			return fmt.Errorf("%w: ai.timeout_seconds must be between %d and %d, got %d",
				ErrInvalidValue, MinTimeoutSeconds, MaxTimeoutSeconds, v)
		}
	}
	if c.Sync.DebounceMS != nil {
		v := *c.Sync.DebounceMS
		if v < MinDebounceMS || v > MaxDebounceMS {
			return fmt.Errorf("%w: sync.debounce_ms must be between %d and %d, got %d",
				ErrInvalidValue, MinDebounceMS, MaxDebounceMS, v)
		}
	}
	return nil
}

// WatchEnabled returns whether scan_repo should default to watch=true
// (defaults to false).
func (c *Config) WatchEnabled() bool {
	if c.Sync.Watch == nil {
		return false
	}
	return *c.Sync.Watch
}

// DebounceMS returns the watcher debounce interval in milliseconds
// (defaults to 500).
func (c *Config) DebounceMS() int {
	if c.Sync.DebounceMS == nil {
		return DefaultDebounceMS
	}
	return *c.Sync.DebounceMS
}

// MaxContent returns the maximum content size in bytes (defaults to 100 MB).
func (c *Config) MaxContent() int64 {
	if c.Limits.MaxContent == nil {
		return DefaultMaxContent
	}
	return *c.Limits.MaxContent
}

// MaxLineLength returns the maximum line length for ingestion (defaults to
// 10 MB). Affects scan_repo/scan_file on documents with very long lines
// (e.g., minified JS/CSS, large JSON, base64 blobs).
func (c *Config) MaxLineLength() int {
	if c.Limits.MaxLineLength == nil {
		return DefaultMaxLineLength
	}
	return *c.Limits.MaxLineLength
}

// TimeoutSeconds returns the remote AI provider HTTP timeout (defaults to 30s).
func (c *Config) TimeoutSeconds() int {
	if c.AI.TimeoutSeconds == nil {
		return DefaultTimeoutSeconds
	}
	return *c.AI.TimeoutSeconds
}

// LocalPath returns the path to the local (repository) config file.
func LocalPath() string {
	return filepath.Join(".mdkb", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.mdkb/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mdkb", "config.yaml")
}

// Path returns the local config path (for backwards compatibility).
func Path() string {
	return LocalPath()
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	// Check if local config exists
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	// Fall back to global
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}

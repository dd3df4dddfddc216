// Package config handles configuration loading, validation, and management for winwatch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Version is the current configuration schema version.
const Version = 2

// Config holds the complete winwatch configuration.
type Config struct {
	// Version is the configuration schema version for migrations.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Loop configuration for the dispatch loop.
	Loop LoopConfig `toml:"loop" json:"loop" yaml:"loop"`

	// Filters configuration for payload screening defaults.
	Filters FilterConfig `toml:"filters" json:"filters" yaml:"filters"`

	// Idle configuration for idle detection.
	Idle IdleConfig `toml:"idle" json:"idle" yaml:"idle"`

	// Journal configuration for event persistence.
	Journal JournalConfig `toml:"journal" json:"journal" yaml:"journal"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Metrics configuration for the scrape endpoint.
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`

	// Rules are declarative subscriptions applied at startup.
	Rules []RuleConfig `toml:"rules" json:"rules" yaml:"rules"`

	// mu protects concurrent access to the config.
	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// LoopConfig holds dispatch loop configuration.
type LoopConfig struct {
	// TickMs is the wait timeout between condition polls in milliseconds.
	TickMs int `toml:"tick_ms" json:"tick_ms" yaml:"tick_ms"`

	// WaitBudgetSec caps one run's wall-clock time in seconds, checked
	// at tick granularity. Set to 0 for no cap.
	WaitBudgetSec float64 `toml:"wait_budget_sec" json:"wait_budget_sec" yaml:"wait_budget_sec"`
}

// FilterConfig holds default payload screening behavior.
type FilterConfig struct {
	// RequireExistingWindow drops payloads whose window has gone away.
	RequireExistingWindow bool `toml:"require_existing_window" json:"require_existing_window" yaml:"require_existing_window"`

	// ExcludeSystemWindows drops payloads for OS internal windows.
	ExcludeSystemWindows bool `toml:"exclude_system_windows" json:"exclude_system_windows" yaml:"exclude_system_windows"`

	// CaptureStaleHandle treats a window vanishing mid-test as a
	// non-match instead of an error.
	CaptureStaleHandle bool `toml:"capture_stale_handle" json:"capture_stale_handle" yaml:"capture_stale_handle"`
}

// IdleConfig holds idle detection configuration.
type IdleConfig struct {
	// Enabled determines whether idle detection runs.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// ThresholdSec is the idle time in seconds before the first fire.
	ThresholdSec float64 `toml:"threshold_sec" json:"threshold_sec" yaml:"threshold_sec"`

	// RepeatLimit caps consecutive fires per idle period.
	RepeatLimit int `toml:"repeat_limit" json:"repeat_limit" yaml:"repeat_limit"`
}

// JournalConfig holds event persistence configuration.
type JournalConfig struct {
	// Enabled determines whether delivered events are journaled.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the path to the journal database file.
	Path string `toml:"path" json:"path" yaml:"path"`

	// BusyTimeoutMs is the SQLite busy timeout in milliseconds.
	BusyTimeoutMs int `toml:"busy_timeout_ms" json:"busy_timeout_ms" yaml:"busy_timeout_ms"`

	// RetainDays is how long journal rows are kept. Zero keeps them forever.
	RetainDays int `toml:"retain_days" json:"retain_days" yaml:"retain_days"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file", or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output includes "file").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is the maximum age of log files in days.
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`

	// Compress determines whether to compress rotated logs.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`
}

// MetricsConfig holds the metrics endpoint configuration.
type MetricsConfig struct {
	// Enabled determines whether the scrape endpoint is served.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// ListenAddr is the address the endpoint binds to.
	ListenAddr string `toml:"listen_addr" json:"listen_addr" yaml:"listen_addr"`
}

// RuleConfig declares one subscription applied at startup. Events name
// the notification kinds to bind; the remaining fields narrow which
// payloads reach the rule's output.
type RuleConfig struct {
	// Name identifies the rule in logs and the journal.
	Name string `toml:"name" json:"name" yaml:"name"`

	// Events lists event constant names, e.g. "EVENT_SYSTEM_FOREGROUND".
	Events []string `toml:"events" json:"events" yaml:"events"`

	// TitlePattern is a glob matched against the window title.
	// Empty matches every title.
	TitlePattern string `toml:"title_pattern" json:"title_pattern" yaml:"title_pattern"`

	// CaseSensitive controls title matching case.
	CaseSensitive bool `toml:"case_sensitive" json:"case_sensitive" yaml:"case_sensitive"`

	// RequireTitle drops payloads for untitled windows.
	RequireTitle bool `toml:"require_title" json:"require_title" yaml:"require_title"`

	// MaxArea drops payloads for windows at or above this pixel area.
	// Zero disables the check.
	MaxArea int `toml:"max_area" json:"max_area" yaml:"max_area"`

	// MaximizedOnly drops payloads for non-maximized windows.
	MaximizedOnly bool `toml:"maximized_only" json:"maximized_only" yaml:"maximized_only"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dir := WinwatchDir()

	return &Config{
		Version: Version,
		Loop: LoopConfig{
			TickMs:        75,
			WaitBudgetSec: 0,
		},
		Filters: FilterConfig{
			RequireExistingWindow: true,
			ExcludeSystemWindows:  true,
			CaptureStaleHandle:    true,
		},
		Idle: IdleConfig{
			Enabled:      false,
			ThresholdSec: 300,
			RepeatLimit:  1,
		},
		Journal: JournalConfig{
			Enabled:       false,
			Path:          filepath.Join(dir, "events.db"),
			BusyTimeoutMs: 5000,
			RetainDays:    30,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(PlatformLogDir(), "winwatch.log"),
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9189",
		},
		Rules: []RuleConfig{},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(WinwatchDir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// EnsureDirectories creates all necessary directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Journal.Path),
		filepath.Dir(c.Logging.FilePath),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// WinwatchDir returns the base winwatch directory.
// Uses platform-specific paths or WINWATCH_DATA_DIR environment override.
func WinwatchDir() string {
	if envDir := os.Getenv("WINWATCH_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformDataDir()
}

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Variables are prefixed with WINWATCH_.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("WINWATCH_TICK_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Loop.TickMs = ms
		}
	}
	if v := os.Getenv("WINWATCH_WAIT_BUDGET_SEC"); v != "" {
		if sec, err := strconv.ParseFloat(v, 64); err == nil {
			c.Loop.WaitBudgetSec = sec
		}
	}

	if v := os.Getenv("WINWATCH_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("WINWATCH_JOURNAL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Journal.Enabled = b
		}
	}

	if v := os.Getenv("WINWATCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("WINWATCH_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("WINWATCH_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv("WINWATCH_METRICS_ADDR"); v != "" {
		c.Metrics.ListenAddr = v
		c.Metrics.Enabled = true
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Config{
		Version: c.Version,
		Loop:    c.Loop,
		Filters: c.Filters,
		Idle:    c.Idle,
		Journal: c.Journal,
		Logging: c.Logging,
		Metrics: c.Metrics,
	}

	clone.Rules = make([]RuleConfig, len(c.Rules))
	for i, r := range c.Rules {
		clone.Rules[i] = r
		clone.Rules[i].Events = append([]string{}, r.Events...)
	}

	return clone
}

// Tick returns the loop tick as a millisecond count, falling back to the
// default when unset.
func (c *Config) Tick() int {
	if c.Loop.TickMs <= 0 {
		return 75
	}
	return c.Loop.TickMs
}

// WaitBudget returns the run's wall-clock cap as a duration, zero when
// unset.
func (c *Config) WaitBudget() time.Duration {
	if c.Loop.WaitBudgetSec <= 0 {
		return 0
	}
	return time.Duration(c.Loop.WaitBudgetSec * float64(time.Second))
}

// SaveConfig writes the configuration to path in TOML.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Package config handles configuration loading and validation for winwatch.
package config

import (
	"fmt"
	"net"
	"path"
	"strings"

	"winwatch/internal/winevent"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateLoop(&c.Loop)...)
	errs = append(errs, validateIdle(&c.Idle)...)
	errs = append(errs, validateJournal(&c.Journal)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validateMetrics(&c.Metrics)...)

	for i := range c.Rules {
		errs = append(errs, validateRule(i, &c.Rules[i])...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateLoop(l *LoopConfig) ValidationErrors {
	var errs ValidationErrors

	if l.TickMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "loop.tick_ms",
			Message: "tick cannot be negative",
		})
	}
	if l.TickMs > 60000 {
		errs = append(errs, ValidationError{
			Field:   "loop.tick_ms",
			Message: "tick cannot exceed 60000ms (1 minute)",
		})
	}
	if l.WaitBudgetSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "loop.wait_budget_sec",
			Message: "wait budget cannot be negative",
		})
	}

	return errs
}

func validateIdle(i *IdleConfig) ValidationErrors {
	var errs ValidationErrors

	if !i.Enabled {
		return nil
	}
	if i.ThresholdSec <= 0 {
		errs = append(errs, ValidationError{
			Field:   "idle.threshold_sec",
			Message: "threshold must be positive",
		})
	}
	if i.RepeatLimit < 1 {
		errs = append(errs, ValidationError{
			Field:   "idle.repeat_limit",
			Message: "repeat limit must be at least 1",
		})
	}

	return errs
}

func validateJournal(j *JournalConfig) ValidationErrors {
	var errs ValidationErrors

	if !j.Enabled {
		return nil
	}
	if j.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "journal.path",
			Message: "path is required when journal is enabled",
		})
	}
	if j.BusyTimeoutMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "journal.busy_timeout_ms",
			Message: "busy timeout cannot be negative",
		})
	}
	if j.RetainDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "journal.retain_days",
			Message: "retention cannot be negative",
		})
	}

	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", l.Level),
		})
	}

	switch l.Format {
	case "", "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", l.Format),
		})
	}

	switch l.Output {
	case "", "stdout", "stderr", "file", "both":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("unknown output %q", l.Output),
		})
	}

	if (l.Output == "file" || l.Output == "both") && l.FilePath == "" {
		errs = append(errs, ValidationError{
			Field:   "logging.file_path",
			Message: "file path is required for file output",
		})
	}

	return errs
}

func validateMetrics(m *MetricsConfig) ValidationErrors {
	var errs ValidationErrors

	if !m.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(m.ListenAddr); err != nil {
		errs = append(errs, ValidationError{
			Field:   "metrics.listen_addr",
			Message: fmt.Sprintf("invalid address %q: %v", m.ListenAddr, err),
		})
	}

	return errs
}

func validateRule(i int, r *RuleConfig) ValidationErrors {
	var errs ValidationErrors
	field := func(name string) string { return fmt.Sprintf("rules[%d].%s", i, name) }

	if r.Name == "" {
		errs = append(errs, ValidationError{
			Field:   field("name"),
			Message: "name is required",
		})
	}

	if len(r.Events) == 0 {
		errs = append(errs, ValidationError{
			Field:   field("events"),
			Message: "at least one event is required",
		})
	}
	for j, name := range r.Events {
		if _, ok := winevent.Lookup(name); !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d].events[%d]", i, j),
				Message: fmt.Sprintf("unknown event %q", name),
			})
		}
	}

	if r.TitlePattern != "" {
		if _, err := path.Match(r.TitlePattern, ""); err != nil {
			errs = append(errs, ValidationError{
				Field:   field("title_pattern"),
				Message: fmt.Sprintf("bad pattern %q: %v", r.TitlePattern, err),
			})
		}
	}

	if r.MaxArea < 0 {
		errs = append(errs, ValidationError{
			Field:   field("max_area"),
			Message: "max area cannot be negative",
		})
	}

	return errs
}

// ResolveEvents maps the rule's event names to their IDs. Unknown names
// have already been rejected by validation.
func (r *RuleConfig) ResolveEvents() ([]winevent.ID, error) {
	ids := make([]winevent.ID, 0, len(r.Events))
	for _, name := range r.Events {
		id, ok := winevent.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown event %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Package config handles configuration loading and validation for winwatch.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// MigrationResult contains the result of a configuration migration.
type MigrationResult struct {
	FromVersion int
	ToVersion   int
	Backup      string
	Changes     []string
	Warnings    []string
}

// MigrateConfig migrates a configuration from an older version to the
// current version. It automatically creates a backup before migration.
func MigrateConfig(cfg *Config, configPath string) (*MigrationResult, error) {
	if cfg.Version >= Version {
		return nil, nil // No migration needed
	}

	result := &MigrationResult{
		FromVersion: cfg.Version,
		ToVersion:   Version,
	}

	if configPath != "" {
		backup, err := backupConfig(configPath)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("could not create backup: %v", err))
		} else {
			result.Backup = backup
		}
	}

	for cfg.Version < Version {
		changes, warnings, err := applyMigration(cfg)
		if err != nil {
			return result, fmt.Errorf("migration from v%d to v%d failed: %w", cfg.Version, cfg.Version+1, err)
		}
		result.Changes = append(result.Changes, changes...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	return result, nil
}

// applyMigration applies a single version upgrade.
func applyMigration(cfg *Config) (changes []string, warnings []string, err error) {
	switch cfg.Version {
	case 1:
		changes, warnings = migrateV1ToV2(cfg)
	default:
		return nil, nil, fmt.Errorf("unknown version %d", cfg.Version)
	}

	cfg.Version++
	return changes, warnings, nil
}

// migrateV1ToV2 migrates from version 1 to version 2.
// V1 had no journal or metrics sections and no filter defaults.
func migrateV1ToV2(cfg *Config) (changes []string, warnings []string) {
	if cfg.Loop.TickMs == 0 {
		cfg.Loop.TickMs = 75
		changes = append(changes, "set default loop.tick_ms")
	}

	if cfg.Journal.Path == "" {
		cfg.Journal.Path = filepath.Join(WinwatchDir(), "events.db")
		changes = append(changes, "set default journal.path")
	}
	if cfg.Journal.BusyTimeoutMs == 0 {
		cfg.Journal.BusyTimeoutMs = 5000
		changes = append(changes, "set default journal.busy_timeout_ms")
	}

	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = "127.0.0.1:9189"
		changes = append(changes, "set default metrics.listen_addr")
	}

	// V1 screened every payload unconditionally; the defaults keep that
	// behavior explicit.
	if !cfg.Filters.RequireExistingWindow && !cfg.Filters.ExcludeSystemWindows && !cfg.Filters.CaptureStaleHandle {
		cfg.Filters = FilterConfig{
			RequireExistingWindow: true,
			ExcludeSystemWindows:  true,
			CaptureStaleHandle:    true,
		}
		changes = append(changes, "enabled default payload filters")
	}

	return changes, warnings
}

// backupConfig copies the config file next to itself with a timestamp suffix.
func backupConfig(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	backup := fmt.Sprintf("%s.backup-%s", path, time.Now().Format("20060102-150405"))
	dst, err := os.OpenFile(backup, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(backup)
		return "", err
	}

	return backup, nil
}

// SaveMigrationHistory appends the migration record to the history file.
func SaveMigrationHistory(result *MigrationResult) error {
	historyPath := filepath.Join(WinwatchDir(), "migrations.json")

	var history []map[string]interface{}
	if data, err := os.ReadFile(historyPath); err == nil {
		_ = json.Unmarshal(data, &history)
	}

	history = append(history, map[string]interface{}{
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"from_version": result.FromVersion,
		"to_version":   result.ToVersion,
		"backup":       result.Backup,
		"changes":      result.Changes,
		"warnings":     result.Warnings,
	})

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(historyPath), 0700); err != nil {
		return err
	}
	return os.WriteFile(historyPath, data, 0600)
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.wantErr != (err != nil) {
				t.Fatalf("ParseLevel(%q) error = %v", test.input, err)
			}
			if !test.wantErr && level != test.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", test.input, level, test.expected)
			}
		})
	}
}

func TestLevelStringRoundtrip(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		name := LevelString(level)
		parsed, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if parsed != level {
			t.Errorf("roundtrip %v -> %q -> %v", level, name, parsed)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != LevelInfo {
		t.Errorf("default level = %v", cfg.Level)
	}
	if cfg.Output != "stderr" {
		t.Errorf("default output = %s", cfg.Output)
	}
	if cfg.MaxSize <= 0 || cfg.MaxAge <= 0 || cfg.MaxBackups <= 0 {
		t.Error("rotation limits must default to positive values")
	}
}

// fileLogger builds a JSON file logger in a temp dir and returns it with
// the log path.
func fileLogger(t *testing.T, level Level) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "winwatch.log")
	logger, err := New(&Config{
		Level:      level,
		Format:     FormatJSON,
		Output:     "file",
		FilePath:   path,
		MaxSize:    10,
		MaxAge:     7,
		MaxBackups: 2,
		Component:  "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, path
}

func readLog(t *testing.T, logger *Logger, path string) string {
	t.Helper()
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestFileOutputCarriesComponent(t *testing.T) {
	logger, path := fileLogger(t, LevelInfo)

	logger.Info("hook installed", "handle", 7)

	out := readLog(t, logger, path)
	if !strings.Contains(out, `"component":"test"`) {
		t.Errorf("record missing component attribute:\n%s", out)
	}
	if !strings.Contains(out, "hook installed") {
		t.Errorf("record missing message:\n%s", out)
	}
}

func TestSetLevelTakesEffectImmediately(t *testing.T) {
	logger, path := fileLogger(t, LevelInfo)

	logger.Debug("suppressed")
	logger.SetLevel(LevelDebug)
	logger.Debug("emitted")

	out := readLog(t, logger, path)
	if strings.Contains(out, "suppressed") {
		t.Error("debug record emitted below the configured level")
	}
	if !strings.Contains(out, "emitted") {
		t.Error("debug record missing after SetLevel(LevelDebug)")
	}
	if logger.Level() != LevelDebug {
		t.Errorf("Level() = %v after SetLevel", logger.Level())
	}
}

func TestWithComponentSharesLevel(t *testing.T) {
	logger, path := fileLogger(t, LevelInfo)
	child := logger.WithComponent("dispatch")

	child.Debug("suppressed")
	logger.SetLevel(LevelDebug)
	child.Debug("emitted")

	out := readLog(t, logger, path)
	if strings.Contains(out, "suppressed") {
		t.Error("child emitted below the shared level")
	}
	if !strings.Contains(out, `"component":"dispatch"`) {
		t.Errorf("child record missing its component:\n%s", out)
	}
}

func TestFileRotatorWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	rotator, err := NewFileRotator(&Config{
		FilePath:   path,
		MaxSize:    1,
		MaxAge:     7,
		MaxBackups: 3,
	})
	if err != nil {
		t.Fatalf("NewFileRotator: %v", err)
	}
	defer rotator.Close()

	line := []byte("test log line\n")
	n, err := rotator.Write(line)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(line) {
		t.Errorf("wrote %d bytes, want %d", n, len(line))
	}
	if err := rotator.Sync(); err != nil {
		t.Errorf("Sync: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file missing: %v", err)
	}
}

func TestFileRotatorRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")
	rotator, err := NewFileRotator(&Config{
		FilePath:   path,
		MaxSize:    1, // 1 MB
		MaxAge:     7,
		MaxBackups: 3,
	})
	if err != nil {
		t.Fatalf("NewFileRotator: %v", err)
	}
	defer rotator.Close()

	chunk := []byte(strings.Repeat("x", 256*1024) + "\n")
	for i := 0; i < 5; i++ {
		if _, err := rotator.Write(chunk); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	backups, err := filepath.Glob(filepath.Join(dir, "test-*.log*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(backups) == 0 {
		t.Error("no rotated backup after exceeding the size cap")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat current log: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Errorf("current log grew past the cap: %d bytes", info.Size())
	}
}

func TestCrashHandlerWritesReport(t *testing.T) {
	handler := NewCrashHandler(&CrashHandlerConfig{
		CrashDir:  t.TempDir(),
		Version:   "1.0.0",
		Component: "test",
	})

	handler.HandlePanic("test panic value", map[string]any{"op": "bind"})

	reports, err := handler.GetCrashReports()
	if err != nil {
		t.Fatalf("GetCrashReports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	report := reports[0]
	if report.PanicValue != "test panic value" {
		t.Errorf("panic value = %q", report.PanicValue)
	}
	if report.Version != "1.0.0" || report.Component != "test" {
		t.Errorf("report identity = %q/%q", report.Version, report.Component)
	}
	if report.Context["op"] != "bind" {
		t.Errorf("report context = %v", report.Context)
	}
	if report.StackTrace == "" {
		t.Error("report missing stack trace")
	}
}

func TestCrashHandlerRecovery(t *testing.T) {
	handler := NewCrashHandler(&CrashHandlerConfig{CrashDir: t.TempDir(), Component: "test"})

	ran := false
	handler.Recover(func() {
		ran = true
		panic("intentional test panic")
	})

	if !ran {
		t.Error("function did not run")
	}
	reports, _ := handler.GetCrashReports()
	if len(reports) != 1 {
		t.Errorf("expected 1 report for recovered panic, got %d", len(reports))
	}
}

func TestCrashHandlerRapidPanicsKeepDistinctFiles(t *testing.T) {
	handler := NewCrashHandler(&CrashHandlerConfig{CrashDir: t.TempDir(), Component: "test"})

	// All three land within the same wall-clock second.
	for i := 0; i < 3; i++ {
		handler.HandlePanic("test panic", nil)
	}

	reports, err := handler.GetCrashReports()
	if err != nil {
		t.Fatalf("GetCrashReports: %v", err)
	}
	if len(reports) != 3 {
		t.Errorf("expected 3 reports, got %d", len(reports))
	}
}

func TestCrashHandlerCleanupOld(t *testing.T) {
	dir := t.TempDir()
	handler := NewCrashHandler(&CrashHandlerConfig{CrashDir: dir, Component: "test"})

	handler.HandlePanic("old panic", nil)
	handler.HandlePanic("fresh panic", nil)

	// Backdate one dump past the retention cutoff.
	files, err := filepath.Glob(filepath.Join(dir, "crash-*.json"))
	if err != nil || len(files) != 2 {
		t.Fatalf("expected 2 dumps, got %d (err %v)", len(files), err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(files[0], old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	if err := handler.CleanupOldCrashReports(24 * time.Hour); err != nil {
		t.Fatalf("CleanupOldCrashReports: %v", err)
	}

	reports, _ := handler.GetCrashReports()
	if len(reports) != 1 {
		t.Errorf("expected 1 report after cleanup, got %d", len(reports))
	}
}

func TestClearCrashReports(t *testing.T) {
	handler := NewCrashHandler(&CrashHandlerConfig{CrashDir: t.TempDir(), Component: "test"})
	handler.HandlePanic("test panic", nil)

	if err := handler.ClearCrashReports(); err != nil {
		t.Fatalf("ClearCrashReports: %v", err)
	}
	reports, _ := handler.GetCrashReports()
	if len(reports) != 0 {
		t.Errorf("reports remain after clear: %d", len(reports))
	}
}

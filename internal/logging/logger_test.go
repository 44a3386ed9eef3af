package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pairdex/internal/config"
	"pairdex/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("scan started", logging.String("root", "/srv/models"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "scan started") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerHeaderShowsComponentAndDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithDirectory(logging.WithRunID(context.Background(), "run-1"), "/srv/models/castles")
	scoped := logging.WithContext(ctx, logging.NewComponentLogger(logger, "scanner"))
	scoped.Info("directory paired", logging.Int("matched", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"INFO [scanner] models/castles", "directory paired", "- matched: 3"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "run-1") {
		t.Fatalf("run id should be hidden at info level: %q", line)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRunID(context.Background(), "run-42")
	logging.WithContext(ctx, logger).Info("batch finished")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if entry[logging.FieldRunID] != "run-42" {
		t.Fatalf("expected run_id, got %v", entry)
	}
	if entry["level"] != "info" || entry["ts"] == nil {
		t.Fatalf("unexpected json shape: %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.WarnWithContext(logger, "learned pairs unreadable", "learned_load_failed",
		logging.String(logging.FieldImpact, "heuristics only"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[logging.FieldEventType] != "learned_load_failed" {
		t.Fatalf("missing event_type: %v", entry)
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatalf("missing error_hint default: %v", entry)
	}
	if entry[logging.FieldImpact] != "heuristics only" {
		t.Fatalf("caller impact overwritten: %v", entry)
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	logging.NewNop().Info("ignored")
	logging.WarnWithContext(nil, "ignored", "none")
	logging.NewComponentLogger(nil, "x").Error("ignored")
}

func TestPruneLogDirKeepsActiveLog(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, logging.LogFileName)
	rotated := filepath.Join(dir, "pairdex-2020-01-01.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{active, rotated, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		old := time.Now().AddDate(0, 0, -90)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}
	}

	logging.PruneLogDir(logging.NewNop(), dir, 30)

	if _, err := os.Stat(active); err != nil {
		t.Fatalf("active log removed: %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}
	if _, err := os.Stat(rotated); !os.IsNotExist(err) {
		t.Fatalf("expected rotated log pruned, stat err=%v", err)
	}
}

func TestProgressSampler(t *testing.T) {
	s := logging.NewProgressSampler(25)
	var emitted []int
	for done := 1; done <= 8; done++ {
		if s.ShouldLog(done, 8) {
			emitted = append(emitted, done)
		}
	}
	want := []int{1, 2, 4, 6, 8}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted %v, want %v", emitted, want)
		}
	}
}

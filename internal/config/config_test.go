package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"pairdex/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLearned := filepath.Join(tempHome, ".local", "share", "pairdex", "learning_data.json")
	if cfg.Paths.LearnedPath != wantLearned {
		t.Fatalf("unexpected learned path: got %q want %q", cfg.Paths.LearnedPath, wantLearned)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "pairdex", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.WorkDir != "" {
		t.Fatalf("expected empty work dir, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Matching.AcceptanceFloor != 0.5 {
		t.Fatalf("unexpected acceptance floor: %v", cfg.Matching.AcceptanceFloor)
	}
	if cfg.Matching.SimilarityEnabled {
		t.Fatal("expected similarity phase disabled by default")
	}
	if cfg.Scan.IndexFilename != "index.json" {
		t.Fatalf("unexpected index filename: %q", cfg.Scan.IndexFilename)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
work_dir = "~/collections"
learned_path = "~/learned/pairs.json"

[scan]
workers = 8
follow_hidden = true

[matching]
similarity_enabled = true
similarity_floor = 0.75
sort_contents = true

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempHome, "collections") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Paths.LearnedPath != filepath.Join(tempHome, "learned", "pairs.json") {
		t.Fatalf("unexpected learned path: %q", cfg.Paths.LearnedPath)
	}
	if cfg.Scan.Workers != 8 || !cfg.Scan.FollowHidden {
		t.Fatalf("unexpected scan section: %+v", cfg.Scan)
	}
	if !cfg.Matching.SimilarityEnabled || cfg.Matching.SimilarityFloor != 0.75 || !cfg.Matching.SortContents {
		t.Fatalf("unexpected matching section: %+v", cfg.Matching)
	}
	if cfg.Matching.PrefixScore != 0.6 {
		t.Fatalf("expected untouched default prefix score, got %v", cfg.Matching.PrefixScore)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvLogLevel, " warn ")
	t.Setenv(config.EnvLearnedPath, "~/env/pairs.json")
	t.Setenv(config.EnvWorkDir, "~/scans")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
	if cfg.Paths.LearnedPath != filepath.Join(tempHome, "env", "pairs.json") {
		t.Fatalf("unexpected learned path: %q", cfg.Paths.LearnedPath)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempHome, "scans") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
}

func TestDotEnvFileIsRead(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workDir := t.TempDir()
	t.Chdir(workDir)
	// Registered so the variable godotenv sets is cleared after the test.
	t.Setenv(config.EnvLogLevel, "")
	os.Unsetenv(config.EnvLogLevel)

	if err := os.WriteFile(filepath.Join(workDir, ".env"), []byte("PAIRDEX_LOG_LEVEL=error\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("expected level from .env, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"floor above one", func(c *config.Config) { c.Matching.AcceptanceFloor = 1.5 }, "matching.acceptance_floor"},
		{"negative prefix score", func(c *config.Config) { c.Matching.PrefixScore = -0.1 }, "matching.prefix_score"},
		{"zero workers", func(c *config.Config) { c.Scan.Workers = 0 }, "scan.workers"},
		{"nested index filename", func(c *config.Config) { c.Scan.IndexFilename = "sub/index.json" }, "scan.index_filename"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"similarity without floor", func(c *config.Config) {
			c.Matching.SimilarityEnabled = true
			c.Matching.SimilarityFloor = 0
		}, "matching.similarity_floor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleParsesAndValidates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	for _, section := range []string{"paths", "scan", "matching", "watch", "logging"} {
		if _, ok := raw[section]; !ok {
			t.Fatalf("sample missing [%s] section", section)
		}
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func TestScanRoot(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = "/srv/collections"

	got, err := cfg.ScanRoot("")
	if err != nil || got != "/srv/collections" {
		t.Fatalf("ScanRoot(\"\") = %q, %v", got, err)
	}
	dir := t.TempDir()
	got, err = cfg.ScanRoot(dir)
	if err != nil || got != dir {
		t.Fatalf("ScanRoot(%q) = %q, %v", dir, got, err)
	}
}

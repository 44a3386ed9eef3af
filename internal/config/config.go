package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	// WorkDir is the default scan root when a command receives no directory.
	// Empty means the current working directory.
	WorkDir     string `toml:"work_dir"`
	LearnedPath string `toml:"learned_path"`
	CatalogPath string `toml:"catalog_path"`
	LogDir      string `toml:"log_dir"`
}

// Scan contains directory walking settings.
type Scan struct {
	Workers              int    `toml:"workers"`
	MaxRetries           int    `toml:"max_retries"`
	RetryDelayMS         int    `toml:"retry_delay_ms"`
	FolderTimeoutSeconds int    `toml:"folder_timeout_seconds"`
	IndexFilename        string `toml:"index_filename"`
	FollowHidden         bool   `toml:"follow_hidden"`
}

// Matching contains the candidate matcher thresholds.
type Matching struct {
	AcceptanceFloor   float64 `toml:"acceptance_floor"`
	PrefixScore       float64 `toml:"prefix_score"`
	MinPrefixLength   int     `toml:"min_prefix_length"`
	SimilarityEnabled bool    `toml:"similarity_enabled"`
	SimilarityFloor   float64 `toml:"similarity_floor"`
	SortContents      bool    `toml:"sort_contents"`
	VariantCacheSize  int     `toml:"variant_cache_size"`
}

// Watch contains settings for the long-running watch command.
type Watch struct {
	DebounceMS  int    `toml:"debounce_ms"`
	MetricsBind string `toml:"metrics_bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for pairdex.
//
// Configuration sections by subsystem:
//   - Paths: learned pairs file, scan catalog, logs, default scan root
//   - Scan: worker count, retries, per-directory timeout, index filename
//   - Matching: phase thresholds and the optional similarity phase
//   - Watch: rescan debounce and metrics listener
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Scan     Scan     `toml:"scan"`
	Matching Matching `toml:"matching"`
	Watch    Watch    `toml:"watch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pairdex/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pairdex.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the parent directories of every state file.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Paths.LearnedPath),
		filepath.Dir(c.Paths.CatalogPath),
		c.Paths.LogDir,
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ScanRoot resolves the directory a command should operate on: the explicit
// argument when given, otherwise paths.work_dir, otherwise the working directory.
func (c *Config) ScanRoot(arg string) (string, error) {
	switch {
	case strings.TrimSpace(arg) != "":
		return expandPath(strings.TrimSpace(arg))
	case c != nil && c.Paths.WorkDir != "":
		return c.Paths.WorkDir, nil
	default:
		return filepath.Abs(".")
	}
}

// RetryDelay returns scan.retry_delay_ms as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Scan.RetryDelayMS) * time.Millisecond
}

// FolderTimeout returns scan.folder_timeout_seconds as a duration. Zero
// disables the per-directory timeout.
func (c *Config) FolderTimeout() time.Duration {
	return time.Duration(c.Scan.FolderTimeoutSeconds) * time.Second
}

// WatchDebounce returns watch.debounce_ms as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

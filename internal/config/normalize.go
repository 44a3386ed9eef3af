package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides. They win over the TOML file.
const (
	EnvLogLevel    = "PAIRDEX_LOG_LEVEL"
	EnvLearnedPath = "PAIRDEX_LEARNED_PATH"
	EnvWorkDir     = "PAIRDEX_WORK_DIR"
)

func (c *Config) normalize() error {
	// A missing .env is the common case.
	_ = godotenv.Load()
	c.applyEnv()

	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeMatching()
	c.normalizeWatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := lookupEnvTrimmed(EnvLogLevel); ok {
		c.Logging.Level = value
	}
	if value, ok := lookupEnvTrimmed(EnvLearnedPath); ok {
		c.Paths.LearnedPath = value
	}
	if value, ok := lookupEnvTrimmed(EnvWorkDir); ok {
		c.Paths.WorkDir = value
	}
}

func lookupEnvTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LearnedPath) == "" {
		c.Paths.LearnedPath = defaultLearnedPath
	}
	if c.Paths.LearnedPath, err = expandPath(c.Paths.LearnedPath); err != nil {
		return fmt.Errorf("paths.learned_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = defaultCatalogPath
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = defaultScanWorkers
	}
	if c.Scan.MaxRetries < 0 {
		c.Scan.MaxRetries = 0
	}
	if c.Scan.RetryDelayMS < 0 {
		c.Scan.RetryDelayMS = 0
	}
	if c.Scan.FolderTimeoutSeconds < 0 {
		c.Scan.FolderTimeoutSeconds = 0
	}
	c.Scan.IndexFilename = strings.TrimSpace(c.Scan.IndexFilename)
	if c.Scan.IndexFilename == "" {
		c.Scan.IndexFilename = defaultIndexFilename
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.MinPrefixLength <= 0 {
		c.Matching.MinPrefixLength = defaultMinPrefixLength
	}
	if c.Matching.VariantCacheSize <= 0 {
		c.Matching.VariantCacheSize = defaultVariantCacheSize
	}
}

func (c *Config) normalizeWatch() {
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = defaultWatchDebounceMS
	}
	c.Watch.MetricsBind = strings.TrimSpace(c.Watch.MetricsBind)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

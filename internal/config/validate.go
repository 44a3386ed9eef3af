package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LearnedPath) == "" {
		return errors.New("paths.learned_path must be set")
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		return errors.New("paths.catalog_path must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 1 {
		return errors.New("scan.workers must be at least 1")
	}
	if c.Scan.IndexFilename != filepath.Base(c.Scan.IndexFilename) {
		return fmt.Errorf("scan.index_filename must be a bare filename, got %q", c.Scan.IndexFilename)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if err := ensureUnit("matching.acceptance_floor", c.Matching.AcceptanceFloor); err != nil {
		return err
	}
	if err := ensureUnit("matching.prefix_score", c.Matching.PrefixScore); err != nil {
		return err
	}
	if err := ensureUnit("matching.similarity_floor", c.Matching.SimilarityFloor); err != nil {
		return err
	}
	if c.Matching.SimilarityEnabled && c.Matching.SimilarityFloor == 0 {
		return errors.New("matching.similarity_floor must be above 0 when similarity is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensureUnit(name string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%s must be between 0 and 1", name)
	}
	return nil
}

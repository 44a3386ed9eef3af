package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"pairdex/internal/catalog"
	"pairdex/internal/config"
	"pairdex/internal/learned"
	"pairdex/internal/logging"
	"pairdex/internal/scanner"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger and prunes expired log files once.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.PruneLogDir(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) learnedStore() (*learned.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return learned.NewStore(cfg.Paths.LearnedPath, logger), nil
}

// openCatalog opens the scan catalog. Failures are logged and yield nil so
// scans still run without history.
func (c *commandContext) openCatalog() *catalog.Store {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	logger, _ := c.ensureLogger()
	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		logging.WarnWithContext(logger, "scan catalog unavailable", "catalog_open_failed",
			logging.String("path", cfg.Paths.CatalogPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the catalog file to rebuild it"),
			logging.String(logging.FieldImpact, "scan history is not recorded"),
		)
		return nil
	}
	return store
}

// newScanner wires a scanner with the learned store and, when non-nil, the
// catalog.
func (c *commandContext) newScanner(cat *catalog.Store) (*scanner.Scanner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := c.learnedStore()
	if err != nil {
		return nil, err
	}
	var opts []scanner.Option
	if cat != nil {
		opts = append(opts, scanner.WithCatalog(cat))
	}
	return scanner.New(cfg, store, logger, opts...), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

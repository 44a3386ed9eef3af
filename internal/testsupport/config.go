package testsupport

import (
	"path/filepath"
	"testing"

	"pairdex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose state files live in a per-test temp
// directory. Retries are immediate so permission tests stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LearnedPath = filepath.Join(base, "state", "learning_data.json")
	cfgVal.Paths.CatalogPath = filepath.Join(base, "state", "catalog.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Scan.RetryDelayMS = 1
	cfgVal.Watch.MetricsBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers sets scan.workers.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.Workers = n
	}
}

// WithFollowHidden sets scan.follow_hidden.
func WithFollowHidden(follow bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.FollowHidden = follow
	}
}

// WithMatching edits the matching section in place.
func WithMatching(fn func(*config.Matching)) ConfigOption {
	return func(b *configBuilder) {
		fn(&b.cfg.Matching)
	}
}

// WithDebounce sets watch.debounce_ms.
func WithDebounce(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watch.DebounceMS = ms
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

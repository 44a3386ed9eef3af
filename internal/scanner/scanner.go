package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pairdex/internal/config"
	"pairdex/internal/learned"
	"pairdex/internal/logging"
	"pairdex/internal/matcher"
	"pairdex/internal/metrics"
	"pairdex/internal/pairing"
	"pairdex/internal/textutil"
)

// Scanner runs pairing batches over directory trees.
type Scanner struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *learned.Store
	engine  *pairing.Engine
	cache   *textutil.VariantCache
	catalog Catalog
	now     func() time.Time
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithCatalog records runs and directory summaries in c.
func WithCatalog(c Catalog) Option {
	return func(s *Scanner) {
		s.catalog = c
	}
}

// WithMatcher swaps the matching backend.
func WithMatcher(m pairing.Matcher) Option {
	return func(s *Scanner) {
		if m != nil {
			s.engine.Matcher = m
		}
	}
}

// New builds a scanner from configuration. The learned store is read once
// per batch.
func New(cfg *config.Config, store *learned.Store, logger *slog.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "scanner")
	cache := textutil.NewVariantCache(cfg.Matching.VariantCacheSize)
	m := matcher.New(
		matcher.PolicyFromConfig(cfg.Matching),
		matcher.WithLogger(logger),
		matcher.WithVariantCache(cache),
	)
	engine := pairing.NewEngine(m)
	engine.SortContents = cfg.Matching.SortContents

	s := &Scanner{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: engine,
		cache:  cache,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan processes root and every directory below it.
func (s *Scanner) Scan(ctx context.Context, root string) (Summary, error) {
	started := time.Now()
	root, err := checkRoot(root)
	if err != nil {
		return Summary{}, err
	}

	metrics.ScanRunning.Set(1)
	defer metrics.ScanRunning.Set(0)
	metrics.ScanRunsTotal.Inc()

	dirs, walkFailures := s.discover(ctx, root)
	snap := s.loadSnapshot()
	runID := s.beginRun(ctx, root)
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, s.logger)

	logger.Info("scan started",
		logging.String("root", root),
		logging.Int("directories", len(dirs)),
		logging.Int("learned_pairs", snap.Len()),
		logging.Int("workers", s.workers()),
	)

	summary := Summary{RunID: runID, Root: root, MethodCounts: make(map[pairing.Method]int)}
	for _, f := range walkFailures {
		summary.add(f)
	}

	var (
		mu      sync.Mutex
		done    int
		sampler = logging.NewProgressSampler(10)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for _, dir := range dirs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome := s.processWithRetry(gctx, dir, snap, runID)
			mu.Lock()
			defer mu.Unlock()
			summary.add(outcome)
			done++
			if sampler.ShouldLog(done, len(dirs)) {
				logger.Info("scan progress",
					logging.Int("done", done),
					logging.Int("total", len(dirs)),
					logging.Int("failed", summary.Failed),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.Duration = time.Since(started)
	s.finishRun(ctx, runID, summary)
	metrics.ScanDuration.Observe(summary.Duration.Seconds())
	metrics.LastScanTimestamp.Set(float64(s.now().Unix()))

	logger.Info("scan completed",
		logging.String("root", root),
		logging.Int("directories", summary.Directories),
		logging.Int("failed", summary.Failed),
		logging.Int("matched", summary.Matched),
		logging.Int("unmatched", summary.Unmatched),
		logging.Int("other_images", summary.OtherImages),
		logging.Duration("duration", summary.Duration),
	)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// ScanDirectory reprocesses a single directory without descending into
// subdirectories. A fresh learned snapshot is loaded.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string) (DirectoryOutcome, error) {
	dir, err := checkRoot(dir)
	if err != nil {
		return DirectoryOutcome{Path: dir, Err: err}, err
	}
	snap := s.loadSnapshot()
	runID := s.beginRun(ctx, dir)
	ctx = logging.WithRunID(ctx, runID)

	outcome := s.processWithRetry(ctx, dir, snap, runID)
	summary := Summary{RunID: runID, Root: dir}
	summary.add(outcome)
	s.finishRun(ctx, runID, summary)
	return outcome, outcome.Err
}

// Inspect lists and pairs dir without writing anything.
func (s *Scanner) Inspect(ctx context.Context, dir string) (Listing, pairing.Result, error) {
	dir, err := checkRoot(dir)
	if err != nil {
		return Listing{}, pairing.Result{}, err
	}
	listing, err := s.listDirectory(ctx, dir)
	if err != nil && !errors.Is(err, ErrFolderTimeout) {
		return listing, pairing.Result{}, err
	}
	result := s.pair(listing, s.loadSnapshot())
	return listing, result, nil
}

// IndexFilename returns the record filename skipped during listings.
func (s *Scanner) IndexFilename() string {
	return s.cfg.Scan.IndexFilename
}

func (s *Scanner) workers() int {
	if s.cfg.Scan.Workers < 1 {
		return 1
	}
	return s.cfg.Scan.Workers
}

func (s *Scanner) loadSnapshot() *learned.Snapshot {
	if s.store == nil {
		return learned.NewSnapshot(nil)
	}
	snap := s.store.Snapshot()
	metrics.LearnedPairs.Set(float64(snap.Len()))
	return snap
}

func (s *Scanner) beginRun(ctx context.Context, root string) string {
	if s.catalog == nil {
		return uuid.NewString()
	}
	run, err := s.catalog.BeginRun(ctx, root)
	if err != nil {
		logging.WarnWithContext(s.logger, "catalog run not recorded", "catalog_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.catalog_path is writable"),
			logging.String(logging.FieldImpact, "scan history will be missing this run"),
		)
		return uuid.NewString()
	}
	return run.ID
}

func (s *Scanner) finishRun(ctx context.Context, runID string, summary Summary) {
	if s.catalog == nil {
		return
	}
	// Detached so a cancelled scan still closes its run row.
	finishCtx := context.WithoutCancel(ctx)
	if err := s.catalog.FinishRun(finishCtx, runID, summary.Directories, summary.Failed); err != nil {
		logging.WarnWithContext(s.logger, "catalog run not finalized", "catalog_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run appears unfinished in scan history"),
		)
	}
}

func checkRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", errors.New("scan root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("scan root %s does not exist", abs)
		}
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("scan root %s is not a directory", abs)
	}
	return abs, nil
}

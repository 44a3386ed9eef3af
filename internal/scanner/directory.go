package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pairdex/internal/catalog"
	"pairdex/internal/fileutil"
	"pairdex/internal/index"
	"pairdex/internal/learned"
	"pairdex/internal/logging"
	"pairdex/internal/metrics"
	"pairdex/internal/pairing"
	"pairdex/internal/textutil"
)

const readDirBatch = 256

// ErrFolderTimeout marks a listing cut short by scan.folder_timeout_seconds.
var ErrFolderTimeout = errors.New("folder listing timed out")

// discover returns root and every directory below it in walk order.
// Symlinked directories are never followed; hidden directories are skipped
// unless scan.follow_hidden is set.
func (s *Scanner) discover(ctx context.Context, root string) ([]string, []DirectoryOutcome) {
	var (
		dirs     []string
		failures []DirectoryOutcome
	)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d == nil {
				failures = append(failures, DirectoryOutcome{Path: path, Err: err})
				return nil
			}
			// Already queued on the first visit; processing retries the read.
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !s.cfg.Scan.FollowHidden && strings.HasPrefix(d.Name(), ".") {
			s.logger.Debug("skipping hidden directory", logging.String(logging.FieldDirectory, path))
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, failures
}

// processWithRetry retries permission failures scan.max_retries times.
func (s *Scanner) processWithRetry(ctx context.Context, dir string, snap *learned.Snapshot, runID string) DirectoryOutcome {
	attempts := s.cfg.Scan.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	dirCtx := logging.WithDirectory(ctx, dir)
	logger := logging.WithContext(dirCtx, s.logger)

	var outcome DirectoryOutcome
	for attempt := 1; attempt <= attempts; attempt++ {
		outcome = s.processDirectory(dirCtx, dir, snap, runID)
		outcome.Attempts = attempt
		if outcome.Err == nil || !errors.Is(outcome.Err, fs.ErrPermission) {
			break
		}
		if attempt == attempts {
			break
		}
		logging.WarnWithContext(logger, "directory access denied, retrying", "directory_permission_retry",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Error(outcome.Err),
			logging.String(logging.FieldErrorHint, "check directory permissions"),
			logging.String(logging.FieldImpact, "directory will be retried"),
		)
		select {
		case <-time.After(s.cfg.RetryDelay()):
		case <-ctx.Done():
			outcome.Err = ctx.Err()
			return outcome
		}
	}

	if outcome.Err != nil {
		reason := "list"
		if errors.Is(outcome.Err, fs.ErrPermission) {
			reason = "permission"
		}
		var writeErr *writeError
		if errors.As(outcome.Err, &writeErr) {
			reason = "write"
		}
		metrics.DirectoryErrors.WithLabelValues(reason).Inc()
		logging.ErrorWithContext(logger, "directory not indexed", "directory_failed",
			logging.Error(outcome.Err),
			logging.Int("attempts", outcome.Attempts),
			logging.String(logging.FieldErrorHint, "check the directory is readable and writable"),
		)
	}
	return outcome
}

type writeError struct {
	err error
}

func (e *writeError) Error() string { return e.err.Error() }

func (e *writeError) Unwrap() error { return e.err }

func (s *Scanner) processDirectory(ctx context.Context, dir string, snap *learned.Snapshot, runID string) DirectoryOutcome {
	logger := logging.WithContext(ctx, s.logger)
	outcome := DirectoryOutcome{Path: dir}

	listing, err := s.listDirectory(ctx, dir)
	if err != nil && !errors.Is(err, ErrFolderTimeout) {
		outcome.Err = err
		return outcome
	}
	if listing.Partial {
		outcome.Partial = true
		metrics.DirectoryErrors.WithLabelValues("timeout").Inc()
		logging.WarnWithContext(logger, "directory listing timed out, indexing partial contents", "folder_timeout",
			logging.Int("files_listed", listing.FileCount),
			logging.Duration("timeout", s.cfg.FolderTimeout()),
			logging.String(logging.FieldErrorHint, "raise scan.folder_timeout_seconds for very large directories"),
			logging.String(logging.FieldImpact, "index record lists only the files read before the timeout"),
		)
	}

	result := s.pair(listing, snap)
	recordPath := index.Path(dir, s.cfg.Scan.IndexFilename)
	previous, err := index.Read(recordPath)
	if err != nil {
		logging.WarnWithContext(logger, "previous index record unreadable", "index_record_corrupt",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the record is rebuilt from scratch"),
			logging.String(logging.FieldImpact, "extra keys of the old record are lost"),
		)
		previous = nil
	}

	stats := index.Stats{
		Path:           dir,
		TotalSizeBytes: listing.TotalSize,
		FileCount:      listing.FileCount,
		SubdirCount:    listing.SubdirCount,
		ScanTime:       s.now(),
	}
	rec := index.Build(stats, listing.Contents, result, previous)
	if err := index.Write(recordPath, rec); err != nil {
		outcome.Err = &writeError{err: err}
		return outcome
	}

	outcome.Record = &rec
	outcome.Result = result
	metrics.DirectoriesScanned.Inc()
	for method, n := range result.MethodCounts() {
		metrics.PairsTotal.WithLabelValues(string(method)).Add(float64(n))
	}
	s.recordDirectory(ctx, runID, dir, result)

	logger.Debug("directory indexed",
		logging.Int("contents", len(listing.Contents)),
		logging.Int("previews", len(listing.Previews)),
		logging.Int("matched", len(result.Matched())),
		logging.Int("subdirs", listing.SubdirCount),
		logging.Int64("total_size_bytes", listing.TotalSize),
		logging.Bool("partial", listing.Partial),
	)
	return outcome
}

func (s *Scanner) pair(listing Listing, snap *learned.Snapshot) pairing.Result {
	candidates := pairing.NewCandidates(listing.Previews, s.cache)
	return s.engine.PairDirectory(listing.Basenames(), candidates, snap)
}

func (s *Scanner) recordDirectory(ctx context.Context, runID, dir string, result pairing.Result) {
	if s.catalog == nil {
		return
	}
	counts := make(map[string]int)
	for method, n := range result.MethodCounts() {
		counts[string(method)] = n
	}
	matched := len(result.Matched())
	summary := catalog.DirectorySummary{
		Path:         dir,
		RunID:        runID,
		ScannedAt:    s.now(),
		ContentCount: len(result.Pairs),
		Matched:      matched,
		Unmatched:    len(result.Pairs) - matched,
		OtherImages:  len(result.Unmatched),
		MethodCounts: counts,
	}
	if err := s.catalog.RecordDirectory(ctx, summary); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "catalog directory not recorded", "catalog_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "report --catalog will show stale data for this directory"),
		)
	}
}

// listDirectory reads and classifies the entries of dir. Symlinks and the
// index record itself are skipped. When the folder timeout elapses the
// entries read so far are returned with Partial set and ErrFolderTimeout.
func (s *Scanner) listDirectory(ctx context.Context, dir string) (Listing, error) {
	listing := Listing{Path: dir}
	f, err := os.Open(dir)
	if err != nil {
		return listing, fmt.Errorf("open directory: %w", err)
	}
	defer f.Close()

	var deadline time.Time
	if timeout := s.cfg.FolderTimeout(); timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	var entries []fs.DirEntry
	for {
		batch, readErr := f.ReadDir(readDirBatch)
		entries = append(entries, batch...)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return listing, fmt.Errorf("read directory: %w", readErr)
		}
		if err := ctx.Err(); err != nil {
			return listing, err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			listing.Partial = true
			break
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	indexName := s.cfg.Scan.IndexFilename
	if strings.TrimSpace(indexName) == "" {
		indexName = index.DefaultFilename
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.EqualFold(name, indexName) || fileutil.IsTempFor(name, indexName) {
			continue
		}
		mode := entry.Type()
		switch {
		case mode&fs.ModeSymlink != 0:
			continue
		case entry.IsDir():
			listing.SubdirCount++
			listing.Subdirs = append(listing.Subdirs, filepath.Join(dir, name))
			continue
		case !mode.IsRegular():
			continue
		}

		path := filepath.Join(dir, name)
		var size int64
		if info, infoErr := entry.Info(); infoErr == nil {
			size = info.Size()
		} else {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "file size unavailable", "file_stat_failed",
				logging.String("file", path),
				logging.Error(infoErr),
				logging.String(logging.FieldImpact, "file is listed with size 0"),
			)
		}
		listing.TotalSize += size
		listing.FileCount++

		if textutil.IsImageFile(name) {
			listing.Previews = append(listing.Previews, pairing.PreviewFile{Name: name, Path: path, SizeBytes: size})
			continue
		}
		base, _ := textutil.SplitExt(name)
		listing.Contents = append(listing.Contents, index.ContentFile{Name: name, Basename: base, Path: path, SizeBytes: size})
	}

	if listing.Partial {
		return listing, ErrFolderTimeout
	}
	return listing, nil
}

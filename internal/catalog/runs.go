package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run is one scan invocation.
type Run struct {
	ID          string
	Root        string
	StartedAt   time.Time
	FinishedAt  time.Time
	Directories int
	Errors      int
}

// Finished reports whether FinishRun was recorded.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// DirectorySummary is the latest pairing outcome for one directory.
type DirectorySummary struct {
	Path         string
	RunID        string
	ScannedAt    time.Time
	ContentCount int
	Matched      int
	Unmatched    int
	OtherImages  int
	MethodCounts map[string]int
}

// BeginRun inserts a new run for root and returns it.
func (s *Store) BeginRun(ctx context.Context, root string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Root:      filepath.Clean(root),
		StartedAt: time.Now().UTC(),
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO scan_runs (id, root, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Root, formatTime(run.StartedAt),
	); err != nil {
		return Run{}, fmt.Errorf("insert scan run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the finish time and totals for run id.
func (s *Store) FinishRun(ctx context.Context, id string, directories, errCount int) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE scan_runs SET finished_at = ?, directories = ?, errors = ? WHERE id = ?`,
		formatTime(time.Now()), directories, errCount, id,
	)
	if err != nil {
		return fmt.Errorf("finish scan run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish scan run: unknown run %q", id)
	}
	return nil
}

// RecordDirectory upserts the summary for summary.Path.
func (s *Store) RecordDirectory(ctx context.Context, summary DirectorySummary) error {
	if strings.TrimSpace(summary.Path) == "" {
		return errors.New("record directory: path is empty")
	}
	if summary.ScannedAt.IsZero() {
		summary.ScannedAt = time.Now()
	}
	counts := summary.MethodCounts
	if counts == nil {
		counts = map[string]int{}
	}
	encoded, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encode method counts: %w", err)
	}
	_, err = s.execWithRetry(ctx, `
INSERT INTO directories (path, run_id, scanned_at, content_count, matched, unmatched, other_images, method_counts)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    run_id = excluded.run_id,
    scanned_at = excluded.scanned_at,
    content_count = excluded.content_count,
    matched = excluded.matched,
    unmatched = excluded.unmatched,
    other_images = excluded.other_images,
    method_counts = excluded.method_counts`,
		filepath.Clean(summary.Path), summary.RunID, formatTime(summary.ScannedAt),
		summary.ContentCount, summary.Matched, summary.Unmatched, summary.OtherImages, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("record directory %s: %w", summary.Path, err)
	}
	return nil
}

// Directories returns summaries for root and everything below it, ordered by
// path. An empty root returns every directory.
func (s *Store) Directories(ctx context.Context, root string) ([]DirectorySummary, error) {
	ctx = ensureContext(ctx)
	var (
		clean  string
		prefix string
	)
	if strings.TrimSpace(root) != "" {
		clean = filepath.Clean(root)
		prefix = strings.TrimSuffix(clean, string(os.PathSeparator)) + string(os.PathSeparator)
	}
	query := `SELECT path, run_id, scanned_at, content_count, matched, unmatched, other_images, method_counts
FROM directories ORDER BY path`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query directories: %w", err)
	}
	defer rows.Close()

	var out []DirectorySummary
	for rows.Next() {
		var (
			d         DirectorySummary
			scannedAt string
			counts    string
		)
		if err := rows.Scan(&d.Path, &d.RunID, &scannedAt, &d.ContentCount, &d.Matched, &d.Unmatched, &d.OtherImages, &counts); err != nil {
			return nil, fmt.Errorf("scan directory row: %w", err)
		}
		if clean != "" && d.Path != clean && !strings.HasPrefix(d.Path, prefix) {
			continue
		}
		d.ScannedAt = parseTime(scannedAt)
		d.MethodCounts = map[string]int{}
		if counts != "" {
			if err := json.Unmarshal([]byte(counts), &d.MethodCounts); err != nil {
				return nil, fmt.Errorf("decode method counts for %s: %w", d.Path, err)
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate directories: %w", err)
	}
	return out, nil
}

// Runs returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, root, started_at, finished_at, directories, errors FROM scan_runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Root, &started, &finished, &r.Directories, &r.Errors); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.StartedAt = parseTime(started)
		if finished.Valid {
			r.FinishedAt = parseTime(finished.String)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan runs: %w", err)
	}
	return out, nil
}

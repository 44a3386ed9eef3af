package learned

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"pairdex/internal/fileutil"
	"pairdex/internal/logging"
	"pairdex/internal/textutil"
)

// ErrInvalidPair is returned by Append when either basename is empty.
var ErrInvalidPair = errors.New("learned pair requires content and preview basenames")

const lockRetryDelay = 50 * time.Millisecond

// Store reads and appends the learned pairs file. Writers serialize through an
// advisory lock on <path>.lock so concurrent CLI invocations do not lose
// confirmations.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a store backed by path. An empty path yields a store that
// always loads empty and rejects writes.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:   strings.TrimSpace(path),
		logger: logging.NewComponentLogger(logger, "learned"),
		now:    time.Now,
	}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the deduplicated pairs in append order. It never fails: any
// read or parse problem is logged and yields an empty list.
func (s *Store) Load() []Pair {
	raw, err := s.readAll()
	if err != nil {
		logging.WarnWithContext(s.logger, "learned pairs unreadable; matching without them", "learned_load_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or remove the learned pairs file"),
			logging.String(logging.FieldImpact, "learned and learned-pattern phases are skipped"),
		)
		return nil
	}
	pairs := Dedupe(raw)
	s.logger.Debug("loaded learned pairs",
		logging.String("path", s.path),
		logging.Int("entries", len(raw)),
		logging.Int("valid", len(pairs)),
	)
	return pairs
}

// Snapshot loads the store and freezes it for one batch.
func (s *Store) Snapshot() *Snapshot {
	return NewSnapshot(s.Load())
}

// Append records a confirmed pair. The file keeps every confirmation; later
// entries supersede earlier ones for the same content basename on Load.
func (s *Store) Append(ctx context.Context, pair Pair) error {
	pair.ContentBasename = strings.TrimSpace(pair.ContentBasename)
	pair.PreviewBasename = strings.TrimSpace(pair.PreviewBasename)
	if !pair.Valid() {
		return ErrInvalidPair
	}
	if pair.ConfirmedAt.IsZero() {
		pair.ConfirmedAt = s.now().UTC().Truncate(time.Second)
	}

	err := s.withLock(ctx, func() error {
		raw, err := s.readForUpdate()
		if err != nil {
			return err
		}
		return s.write(append(raw, pair))
	})
	if err != nil {
		return err
	}
	s.logger.Info("learned pair recorded",
		logging.String(logging.FieldEventType, "learned_pair_appended"),
		logging.String("content", pair.ContentBasename),
		logging.String("preview", pair.PreviewBasename),
	)
	return nil
}

// Forget removes every pair for the content basename. It reports whether any
// entry was removed.
func (s *Store) Forget(ctx context.Context, content string) (bool, error) {
	key := textutil.Fold(content)
	if key == "" {
		return false, ErrInvalidPair
	}
	removed := 0
	err := s.withLock(ctx, func() error {
		raw, err := s.readForUpdate()
		if err != nil {
			return err
		}
		kept := raw[:0]
		for _, p := range raw {
			if p.Valid() && p.contentKey() == key {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		if removed == 0 {
			return nil
		}
		return s.write(kept)
	})
	if err != nil {
		return false, err
	}
	if removed > 0 {
		s.logger.Info("learned pair forgotten",
			logging.String(logging.FieldEventType, "learned_pair_forgotten"),
			logging.String("content", content),
			logging.Int("removed", removed),
		)
	}
	return removed > 0, nil
}

func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if s.path == "" {
		return errors.New("learned pairs path not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create learned pairs directory: %w", err)
	}
	lock := flock.New(s.path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire learned pairs lock: %w", err)
	}
	if !locked {
		return errors.New("acquire learned pairs lock: not acquired")
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fn()
}

// readAll returns every entry in file order, including invalid ones.
func (s *Store) readAll() ([]Pair, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read learned pairs: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("parse learned pairs: %w", err)
	}
	pairs := make([]Pair, 0, len(elements))
	for _, element := range elements {
		var p Pair
		if err := json.Unmarshal(element, &p); err != nil {
			// Non-object elements cannot carry a pair.
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// readForUpdate is readAll for writers. A corrupt file is moved aside rather
// than silently overwritten.
func (s *Store) readForUpdate() ([]Pair, error) {
	raw, err := s.readAll()
	if err == nil {
		return raw, nil
	}
	backup := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().UTC().Format("20060102T150405"))
	if renameErr := os.Rename(s.path, backup); renameErr != nil {
		return nil, fmt.Errorf("%w (backup failed: %v)", err, renameErr)
	}
	logging.WarnWithContext(s.logger, "learned pairs file corrupt; starting a new one", "learned_file_reset",
		logging.String("path", s.path),
		logging.String("backup", backup),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect the backup to recover old confirmations"),
		logging.String(logging.FieldImpact, "previous confirmations are not applied until restored"),
	)
	return nil, nil
}

func (s *Store) write(pairs []Pair) error {
	if pairs == nil {
		pairs = []Pair{}
	}
	if err := fileutil.WriteJSONAtomic(s.path, pairs, "  "); err != nil {
		return fmt.Errorf("persist learned pairs: %w", err)
	}
	return nil
}

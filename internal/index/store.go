package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pairdex/internal/fileutil"
)

// DefaultFilename is the record filename written into each directory.
const DefaultFilename = "index.json"

// ErrCorruptRecord marks a record file that exists but cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt index record")

// Path returns the record path for dir. An empty filename uses DefaultFilename.
func Path(dir, filename string) string {
	if strings.TrimSpace(filename) == "" {
		filename = DefaultFilename
	}
	return filepath.Join(dir, filename)
}

// Read loads the record at path. A missing file returns nil, nil; a file that
// does not decode returns an error wrapping ErrCorruptRecord.
func Read(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, path, err)
	}
	return &rec, nil
}

// Write stores rec at path atomically with 4-space indentation.
func Write(path string, rec Record) error {
	if err := fileutil.WriteJSONAtomic(path, rec, "    "); err != nil {
		return fmt.Errorf("write index record: %w", err)
	}
	return nil
}

// RemoveResult counts the outcome of Remove.
type RemoveResult struct {
	Removed int
	Failed  int
	Errors  []error
}

// Remove deletes every file named filename below root. Individual failures
// are collected; only a root that cannot be walked at all is an error.
func Remove(root, filename string) (RemoveResult, error) {
	if strings.TrimSpace(filename) == "" {
		filename = DefaultFilename
	}
	var res RemoveResult
	info, err := os.Stat(root)
	if err != nil {
		return res, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("root %s is not a directory", root)
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			res.Failed++
			res.Errors = append(res.Errors, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != filename {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := os.Remove(path); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Errorf("remove %s: %w", path, err))
			return nil
		}
		res.Removed++
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("walk %s: %w", root, err)
	}
	return res, nil
}

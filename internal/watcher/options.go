package watcher

import (
	"path/filepath"
	"strings"
	"time"

	"pairdex/internal/index"
)

// Options configures the watcher.
type Options struct {
	// Debounce is the quiet period before a directory is rescanned.
	Debounce      time.Duration
	IndexFilename string
	FollowHidden  bool
	// IgnorePatterns are filepath.Match patterns tested against base names.
	IgnorePatterns []string
}

func (o *Options) setDefaults() {
	if o.Debounce <= 0 {
		o.Debounce = 750 * time.Millisecond
	}
	if strings.TrimSpace(o.IndexFilename) == "" {
		o.IndexFilename = index.DefaultFilename
	}
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			"*.tmp",
			"*.temp",
			"*.part",
			"*.crdownload",
			"Thumbs.db",
		}
	}
}

// ignoreFile reports whether an event on path should not trigger a rescan.
func (o *Options) ignoreFile(path string) bool {
	base := filepath.Base(path)
	if strings.EqualFold(base, o.IndexFilename) {
		return true
	}
	// atomic-write temp files and dotfiles
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// skipDir reports whether a directory should not be watched.
func (o *Options) skipDir(root, path string) bool {
	if path == root || o.FollowHidden {
		return false
	}
	return strings.HasPrefix(filepath.Base(path), ".")
}

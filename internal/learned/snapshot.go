package learned

import "pairdex/internal/textutil"

// Snapshot is an immutable view of the learned pairs taken at the start of a
// batch. Patterns are derived once. A nil Snapshot behaves as empty.
type Snapshot struct {
	pairs    []Pair
	index    map[string]string
	patterns []Pattern
}

// NewSnapshot deduplicates pairs and derives their patterns.
func NewSnapshot(pairs []Pair) *Snapshot {
	deduped := Dedupe(pairs)
	index := make(map[string]string, len(deduped))
	for _, p := range deduped {
		index[p.contentKey()] = p.PreviewBasename
	}
	return &Snapshot{
		pairs:    deduped,
		index:    index,
		patterns: DerivePatterns(deduped),
	}
}

// Lookup returns the confirmed preview basename for content, compared
// case-insensitively.
func (s *Snapshot) Lookup(content string) (string, bool) {
	if s == nil {
		return "", false
	}
	key := textutil.Fold(content)
	if key == "" {
		return "", false
	}
	preview, ok := s.index[key]
	return preview, ok
}

// Patterns returns the derived patterns, highest confidence first.
func (s *Snapshot) Patterns() []Pattern {
	if s == nil {
		return nil
	}
	return append([]Pattern(nil), s.patterns...)
}

// Pairs returns the deduplicated pairs in append order.
func (s *Snapshot) Pairs() []Pair {
	if s == nil {
		return nil
	}
	return append([]Pair(nil), s.pairs...)
}

// Len returns the number of distinct content basenames.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}

package matcher

import (
	"log/slog"
	"strings"

	"pairdex/internal/learned"
	"pairdex/internal/logging"
	"pairdex/internal/pairing"
	"pairdex/internal/textutil"
)

// Matcher runs the phase pipeline for one content basename at a time. It is
// safe for concurrent use when its phases are.
type Matcher struct {
	policy Policy
	phases []Phase
	cache  *textutil.VariantCache
	logger *slog.Logger
}

// Option customises the Matcher.
type Option func(*Matcher)

// WithLogger sets the logger used for per-match debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logging.NewComponentLogger(logger, "matcher")
		}
	}
}

// WithVariantCache shares a variant cache across matchers and candidate
// construction.
func WithVariantCache(cache *textutil.VariantCache) Option {
	return func(m *Matcher) {
		m.cache = cache
	}
}

// WithPhases replaces the default pipeline. Phases run in the given order.
func WithPhases(phases ...Phase) Option {
	return func(m *Matcher) {
		m.phases = append([]Phase(nil), phases...)
	}
}

// New builds a matcher. Without WithPhases it uses DefaultPhases(policy).
func New(policy Policy, opts ...Option) *Matcher {
	m := &Matcher{
		policy: policy.normalized(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.phases == nil {
		m.phases = DefaultPhases(m.policy, m.cache)
	}
	return m
}

// Policy returns the normalized policy in effect.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// Phases returns the pipeline in order.
func (m *Matcher) Phases() []Phase {
	return append([]Phase(nil), m.phases...)
}

// Match returns the best preview for content among the image candidates.
func (m *Matcher) Match(content string, candidates []pairing.Candidate, snap *learned.Snapshot) pairing.MatchResult {
	if strings.TrimSpace(content) == "" || len(candidates) == 0 {
		return pairing.NoMatch(content)
	}
	images := make([]pairing.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsImage {
			images = append(images, c)
		}
	}
	if len(images) == 0 {
		return pairing.NoMatch(content)
	}

	for _, phase := range m.phases {
		idx, score, ok := phase.Match(content, images, snap)
		if !ok || idx < 0 || idx >= len(images) {
			continue
		}
		chosen := images[idx]
		m.logger.Debug("preview matched",
			logging.String("content", content),
			logging.String("preview", chosen.Name),
			logging.String(logging.FieldMatchMethod, string(phase.Name())),
			logging.Float64("score", score),
		)
		return pairing.MatchResult{
			Content: content,
			Preview: &chosen,
			Method:  phase.Name(),
			Score:   score,
		}
	}
	return pairing.NoMatch(content)
}

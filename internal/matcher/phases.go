package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pairdex/internal/learned"
	"pairdex/internal/pairing"
	"pairdex/internal/textutil"
)

// Phase is one step of the matching pipeline. Match returns the index of the
// chosen candidate and its score when it hits.
type Phase interface {
	Name() pairing.Method
	Match(content string, candidates []pairing.Candidate, snap *learned.Snapshot) (idx int, score float64, ok bool)
}

// DefaultPhases returns the stock pipeline for policy. The similarity phase is
// included only when the policy enables it.
func DefaultPhases(policy Policy, cache *textutil.VariantCache) []Phase {
	policy = policy.normalized()
	phases := []Phase{
		LearnedPhase{},
		PatternPhase{Floor: policy.AcceptanceFloor},
		NewExactPhase(policy.Suffixes, policy.SuffixSeparators, cache),
		PrefixPhase{MinLength: policy.MinPrefixLength, Score: policy.PrefixScore, Cache: cache},
	}
	if policy.SimilarityEnabled {
		phases = append(phases, SimilarityPhase{Floor: policy.SimilarityFloor})
	}
	return phases
}

func foldedBasename(c pairing.Candidate) string {
	return textutil.Fold(c.Basename)
}

func candidateVariants(c pairing.Candidate, cache *textutil.VariantCache) []string {
	if len(c.Variants) > 0 {
		return c.Variants
	}
	return cache.Variants(c.Basename)
}

// LearnedPhase applies a confirmed pair for the content basename verbatim.
type LearnedPhase struct{}

func (LearnedPhase) Name() pairing.Method { return pairing.MethodLearned }

func (LearnedPhase) Match(content string, candidates []pairing.Candidate, snap *learned.Snapshot) (int, float64, bool) {
	preview, ok := snap.Lookup(content)
	if !ok {
		return -1, 0, false
	}
	target := textutil.Fold(preview)
	for i, c := range candidates {
		// Older learning files sometimes stored the preview with its extension.
		if foldedBasename(c) == target || textutil.Fold(c.Name) == target {
			return i, 1.0, true
		}
	}
	return -1, 0, false
}

// PatternPhase rewrites the content basename with each accepted learned
// pattern, highest confidence first, and looks for that exact basename.
type PatternPhase struct {
	Floor float64
}

func (PatternPhase) Name() pairing.Method { return pairing.MethodLearnedPattern }

func (p PatternPhase) Match(content string, candidates []pairing.Candidate, snap *learned.Snapshot) (int, float64, bool) {
	folded := textutil.Fold(content)
	for _, pattern := range snap.Patterns() {
		if !pattern.Accepted(p.Floor) {
			continue
		}
		rewritten := pattern.Apply(folded)
		if rewritten == folded {
			continue
		}
		for i, c := range candidates {
			if foldedBasename(c) == rewritten {
				return i, pattern.Confidence, true
			}
		}
	}
	return -1, 0, false
}

// ExactPhase matches when the content and candidate variant sets intersect,
// or when the candidate is a content variant plus a known suffix.
type ExactPhase struct {
	suffixes   []string
	separators []string
	cache      *textutil.VariantCache
}

// NewExactPhase builds the phase with the given suffix vocabulary.
func NewExactPhase(suffixes, separators []string, cache *textutil.VariantCache) ExactPhase {
	return ExactPhase{
		suffixes:   append([]string(nil), suffixes...),
		separators: append([]string(nil), separators...),
		cache:      cache,
	}
}

func (ExactPhase) Name() pairing.Method { return pairing.MethodExact }

func (p ExactPhase) Match(content string, candidates []pairing.Candidate, _ *learned.Snapshot) (int, float64, bool) {
	variants := p.cache.Variants(content)
	plain := make(map[string]struct{}, len(variants))
	extended := make(map[string]struct{}, len(variants)*(1+len(p.suffixes)*len(p.separators)))
	for _, v := range variants {
		plain[v] = struct{}{}
		extended[v] = struct{}{}
		for _, sep := range p.separators {
			for _, suffix := range p.suffixes {
				extended[v+sep+suffix] = struct{}{}
			}
		}
	}

	for i, c := range candidates {
		if _, ok := extended[foldedBasename(c)]; ok {
			return i, 1.0, true
		}
		for _, cv := range candidateVariants(c, p.cache) {
			if _, ok := plain[cv]; ok {
				return i, 1.0, true
			}
		}
	}
	return -1, 0, false
}

// PrefixPhase matches a candidate whose folded basename starts with a content
// variant followed by nothing, a separator, or a digit.
type PrefixPhase struct {
	MinLength int
	Score     float64
	Cache     *textutil.VariantCache
}

func (PrefixPhase) Name() pairing.Method { return pairing.MethodPrefix }

func (p PrefixPhase) Match(content string, candidates []pairing.Candidate, _ *learned.Snapshot) (int, float64, bool) {
	variants := p.Cache.Variants(content)
	for i, c := range candidates {
		folded := foldedBasename(c)
		for _, v := range variants {
			if utf8.RuneCountInString(v) < p.MinLength || !strings.HasPrefix(folded, v) {
				continue
			}
			if prefixBoundary(folded[len(v):]) {
				return i, p.Score, true
			}
		}
	}
	return -1, 0, false
}

func prefixBoundary(rest string) bool {
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return textutil.IsSeparator(r) || unicode.IsDigit(r)
}

// SimilarityPhase picks the candidate with the highest token cosine
// similarity, if it reaches Floor.
type SimilarityPhase struct {
	Floor float64
}

func (SimilarityPhase) Name() pairing.Method { return pairing.MethodSimilarity }

func (p SimilarityPhase) Match(content string, candidates []pairing.Candidate, _ *learned.Snapshot) (int, float64, bool) {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Basename
	}
	idx, score := textutil.BestSimilar(content, names)
	if idx < 0 || score < p.Floor {
		return -1, 0, false
	}
	return idx, score, true
}

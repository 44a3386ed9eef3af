package pairing

import (
	"math"
	"sort"

	"pairdex/internal/learned"
	"pairdex/internal/textutil"
)

// Matcher picks the best candidate for one content basename. Implementations
// must only return candidates drawn from the slice they were given.
type Matcher interface {
	Match(content string, candidates []Candidate, snap *learned.Snapshot) MatchResult
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(content string, candidates []Candidate, snap *learned.Snapshot) MatchResult

// Match calls f.
func (f MatcherFunc) Match(content string, candidates []Candidate, snap *learned.Snapshot) MatchResult {
	return f(content, candidates, snap)
}

// Engine runs a Matcher across every content file of a directory.
type Engine struct {
	Matcher Matcher
	// SortContents visits content basenames in folded lexical order instead of
	// the order given, making results independent of listing order.
	SortContents bool
}

// NewEngine returns an engine using m.
func NewEngine(m Matcher) *Engine {
	return &Engine{Matcher: m}
}

// PairDirectory pairs contents against candidates. Each candidate is claimed
// by at most one content basename; identical inputs give identical results.
func (e *Engine) PairDirectory(contents []string, candidates []Candidate, snap *learned.Snapshot) Result {
	order := contents
	if e.SortContents {
		order = sortedContents(contents)
	}

	available := append([]Candidate(nil), candidates...)
	pairs := make([]MatchResult, 0, len(order))
	for _, content := range order {
		result := e.matchOne(content, available, snap)
		if result.Preview == nil || result.Method == "" || result.Method == MethodNone {
			pairs = append(pairs, NoMatch(content))
			continue
		}
		idx := indexOf(available, result.Preview.Name)
		if idx < 0 {
			// The matcher returned something it was not offered.
			pairs = append(pairs, NoMatch(content))
			continue
		}
		claimed := available[idx]
		available = append(available[:idx], available[idx+1:]...)

		result.Content = content
		result.Preview = &claimed
		result.Score = clampScore(result.Score)
		pairs = append(pairs, result)
	}

	return Result{Pairs: pairs, Unmatched: available}
}

func (e *Engine) matchOne(content string, available []Candidate, snap *learned.Snapshot) (result MatchResult) {
	if e == nil || e.Matcher == nil || content == "" || len(available) == 0 {
		return NoMatch(content)
	}
	defer func() {
		if recover() != nil {
			result = NoMatch(content)
		}
	}()
	// Hand the matcher its own copy so it cannot reorder our working set.
	view := append([]Candidate(nil), available...)
	return e.Matcher.Match(content, view, snap)
}

func indexOf(candidates []Candidate, name string) int {
	for i := range candidates {
		if candidates[i].Name == name {
			return i
		}
	}
	return -1
}

func clampScore(score float64) float64 {
	switch {
	case score < 0 || math.IsNaN(score):
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

func sortedContents(contents []string) []string {
	out := append([]string(nil), contents...)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := textutil.Fold(out[i]), textutil.Fold(out[j])
		if fi != fj {
			return fi < fj
		}
		return out[i] < out[j]
	})
	return out
}

package pairing

import (
	"pairdex/internal/textutil"
)

// Method names the matcher phase that produced a pairing.
type Method string

const (
	MethodLearned        Method = "learned"
	MethodLearnedPattern Method = "learned-pattern"
	MethodExact          Method = "exact"
	MethodPrefix         Method = "prefix"
	MethodSimilarity     Method = "similarity"
	MethodNone           Method = "none"
)

// Methods lists every method in phase order.
var Methods = []Method{
	MethodLearned,
	MethodLearnedPattern,
	MethodExact,
	MethodPrefix,
	MethodSimilarity,
	MethodNone,
}

// Candidate is a preview file considered for pairing. Variants is computed
// once per directory and reused for every content file.
type Candidate struct {
	Name      string
	Basename  string
	Variants  []string
	Path      string
	IsImage   bool
	SizeBytes int64
}

// PreviewFile is the raw listing entry a Candidate is built from.
type PreviewFile struct {
	Name      string
	Path      string
	SizeBytes int64
}

// NewCandidate classifies and normalizes one preview file. A nil cache
// computes variants directly.
func NewCandidate(file PreviewFile, cache *textutil.VariantCache) Candidate {
	base, ext := textutil.SplitExt(file.Name)
	return Candidate{
		Name:      file.Name,
		Basename:  base,
		Variants:  cache.Variants(base),
		Path:      file.Path,
		IsImage:   textutil.IsImageExt(ext),
		SizeBytes: file.SizeBytes,
	}
}

// NewCandidates builds candidates in listing order.
func NewCandidates(files []PreviewFile, cache *textutil.VariantCache) []Candidate {
	out := make([]Candidate, 0, len(files))
	for _, f := range files {
		out = append(out, NewCandidate(f, cache))
	}
	return out
}

// MatchResult is the outcome for one content basename. Preview is nil when no
// phase matched; Score is then 0 and Method is MethodNone.
type MatchResult struct {
	Content string
	Preview *Candidate
	Method  Method
	Score   float64
}

// Matched reports whether a preview was found.
func (r MatchResult) Matched() bool {
	return r.Preview != nil
}

// PreviewName returns the matched preview filename, or "".
func (r MatchResult) PreviewName() string {
	if r.Preview == nil {
		return ""
	}
	return r.Preview.Name
}

// NoMatch returns the empty result for content.
func NoMatch(content string) MatchResult {
	return MatchResult{Content: content, Method: MethodNone}
}

// Result is the pairing of one directory.
type Result struct {
	Pairs     []MatchResult
	Unmatched []Candidate
}

// Matched returns the pairs that found a preview.
func (r Result) Matched() []MatchResult {
	out := make([]MatchResult, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		if p.Matched() {
			out = append(out, p)
		}
	}
	return out
}

// MethodCounts tallies pairs per method, including MethodNone.
func (r Result) MethodCounts() map[Method]int {
	counts := make(map[Method]int, len(Methods))
	for _, p := range r.Pairs {
		counts[p.Method]++
	}
	return counts
}

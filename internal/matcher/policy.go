package matcher

import (
	"pairdex/internal/config"
	"pairdex/internal/learned"
)

// Policy centralizes matcher thresholds and the preview suffix vocabulary.
type Policy struct {
	// AcceptanceFloor is the minimum learned-pattern confidence applied.
	AcceptanceFloor float64
	PrefixScore     float64
	// MinPrefixLength is counted in runes.
	MinPrefixLength   int
	SimilarityEnabled bool
	SimilarityFloor   float64
	// Suffixes may follow a content name in its preview's name, joined by
	// any of SuffixSeparators ("" joins with nothing).
	Suffixes         []string
	SuffixSeparators []string
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		AcceptanceFloor:  learned.AcceptanceFloor,
		PrefixScore:      0.6,
		MinPrefixLength:  3,
		SimilarityFloor:  0.8,
		Suffixes:         []string{"001", "preview", "thumb", "1", "2", "3", "0", "cover"},
		SuffixSeparators: []string{"_", "-", " ", ""},
	}
}

// PolicyFromConfig maps the [matching] section onto a policy.
func PolicyFromConfig(m config.Matching) Policy {
	p := DefaultPolicy()
	p.AcceptanceFloor = m.AcceptanceFloor
	p.PrefixScore = m.PrefixScore
	p.MinPrefixLength = m.MinPrefixLength
	p.SimilarityEnabled = m.SimilarityEnabled
	p.SimilarityFloor = m.SimilarityFloor
	return p.normalized()
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.AcceptanceFloor <= 0 || p.AcceptanceFloor > 1 {
		p.AcceptanceFloor = d.AcceptanceFloor
	}
	if p.PrefixScore <= 0 || p.PrefixScore > 1 {
		p.PrefixScore = d.PrefixScore
	}
	if p.MinPrefixLength <= 0 {
		p.MinPrefixLength = d.MinPrefixLength
	}
	if p.SimilarityFloor <= 0 || p.SimilarityFloor > 1 {
		p.SimilarityFloor = d.SimilarityFloor
	}
	if len(p.Suffixes) == 0 {
		p.Suffixes = d.Suffixes
	}
	if len(p.SuffixSeparators) == 0 {
		p.SuffixSeparators = d.SuffixSeparators
	}
	return p
}

package learned

import (
	"sort"
	"strings"

	"pairdex/internal/textutil"
)

// AcceptanceFloor is the minimum confidence a derived pattern needs before the
// matcher applies it.
const AcceptanceFloor = 0.5

// Shape is a named rename rule that can be checked against a confirmed pair
// and applied to a folded content basename.
type Shape struct {
	Name string
	// Supports reports whether the folded pair is explained by this shape.
	Supports func(content, preview string) bool
	// Apply rewrites a folded content basename into the expected preview basename.
	Apply func(content string) string
}

func separatorSwap(from, to string) Shape {
	return Shape{
		Supports: func(content, preview string) bool {
			return strings.Contains(content, from) && strings.Contains(preview, to) &&
				strings.ReplaceAll(content, from, to) == preview
		},
		Apply: func(content string) string {
			return strings.ReplaceAll(content, from, to)
		},
	}
}

func named(name string, s Shape) Shape {
	s.Name = name
	return s
}

// Shapes is the registry consulted by DerivePatterns, in tie-break order.
var Shapes = []Shape{
	{
		Name: "underscore_to_dot",
		Supports: func(content, preview string) bool {
			return strings.Contains(content, "_") && strings.Contains(preview, ".") &&
				strings.ReplaceAll(content, "_", "") == strings.ReplaceAll(preview, ".", "")
		},
		Apply: func(content string) string {
			return strings.ReplaceAll(content, "_", ".")
		},
	},
	named("underscore_to_space", separatorSwap("_", " ")),
	named("hyphen_to_space", separatorSwap("-", " ")),
	named("space_to_underscore", separatorSwap(" ", "_")),
}

// ShapeByName returns the registered shape with the given name.
func ShapeByName(name string) (Shape, bool) {
	for _, s := range Shapes {
		if s.Name == name {
			return s, true
		}
	}
	return Shape{}, false
}

// Pattern is a shape together with how well the learned pairs support it.
type Pattern struct {
	Shape      string  `json:"shape"`
	Count      int     `json:"count"`
	Total      int     `json:"total"`
	Confidence float64 `json:"confidence"`
}

// Apply rewrites a folded content basename with the pattern's shape. Unknown
// shapes return the input unchanged.
func (p Pattern) Apply(folded string) string {
	shape, ok := ShapeByName(p.Shape)
	if !ok {
		return folded
	}
	return shape.Apply(folded)
}

// Accepted reports whether the pattern clears floor.
func (p Pattern) Accepted(floor float64) bool {
	return p.Confidence >= floor
}

// DerivePatterns counts, for every registered shape, the pairs it explains.
// Confidence is that count divided by the number of pairs examined. Shapes
// with no support are omitted; the rest are ordered by confidence, highest
// first, then by registry order.
func DerivePatterns(pairs []Pair) []Pattern {
	valid := make([][2]string, 0, len(pairs))
	for _, p := range pairs {
		if !p.Valid() {
			continue
		}
		valid = append(valid, [2]string{textutil.Fold(p.ContentBasename), textutil.Fold(p.PreviewBasename)})
	}
	total := len(valid)
	if total == 0 {
		return nil
	}

	patterns := make([]Pattern, 0, len(Shapes))
	for _, shape := range Shapes {
		count := 0
		for _, pair := range valid {
			if shape.Supports(pair[0], pair[1]) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		patterns = append(patterns, Pattern{
			Shape:      shape.Name,
			Count:      count,
			Total:      total,
			Confidence: float64(count) / float64(total),
		})
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Confidence > patterns[j].Confidence
	})
	return patterns
}

package textutil

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// separatorSubstitutions produces the single-substitution variants. Each pair is
// applied on its own, never chained.
var separatorSubstitutions = [][2]string{
	{"_", " "},
	{" ", "_"},
	{"-", " "},
	{" ", "-"},
	{"_", "-"},
	{"-", "_"},
}

var lowerCaser = cases.Lower(language.Und)

// Fold lowercases, NFC-normalizes and trims a basename. It is the canonical
// form used for every case-insensitive comparison in pairdex.
func Fold(value string) string {
	return strings.TrimSpace(lowerCaser.String(norm.NFC.String(value)))
}

// SplitExt splits a filename into its basename and final extension
// ("a.tar.gz" -> "a.tar", ".gz"). Leading dots of hidden files are kept in
// the basename.
func SplitExt(filename string) (string, string) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", ""
	}
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// Basename returns the filename without its final extension.
func Basename(filename string) string {
	base, _ := SplitExt(filename)
	return base
}

// IsSeparator reports whether r is one of the filename separators that
// Normalize unifies.
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-'
}

// Normalize returns the sorted variant set for a basename: the folded form,
// the six single separator substitutions, and the collapsed form joined by a
// space and by an underscore. The result is never empty.
func Normalize(basename string) []string {
	folded := Fold(basename)
	seen := map[string]struct{}{folded: {}}
	for _, sub := range separatorSubstitutions {
		seen[strings.ReplaceAll(folded, sub[0], sub[1])] = struct{}{}
	}
	if words := splitSeparators(folded); len(words) > 0 {
		seen[strings.Join(words, " ")] = struct{}{}
		seen[strings.Join(words, "_")] = struct{}{}
	}

	variants := make([]string, 0, len(seen))
	for v := range seen {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}

// CollapseSeparators folds value and joins its separator-delimited words with
// a single space.
func CollapseSeparators(value string) string {
	return strings.Join(splitSeparators(Fold(value)), " ")
}

func splitSeparators(value string) []string {
	return strings.FieldsFunc(value, IsSeparator)
}

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"pairdex/internal/pairing"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorize(s, color string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ansiReset
}

func renderSectionHeader(title string, color bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{colorize(line, ansiBlue, color), colorize(rule, ansiBlue, color)}
}

func methodColor(method pairing.Method) string {
	switch method {
	case pairing.MethodLearned, pairing.MethodLearnedPattern:
		return ansiGreen
	case pairing.MethodExact:
		return ansiBlue
	case pairing.MethodPrefix, pairing.MethodSimilarity:
		return ansiYellow
	case pairing.MethodNone:
		return ansiRed
	default:
		return ""
	}
}

func methodNames(counts map[pairing.Method]int) map[string]int {
	out := make(map[string]int, len(counts))
	for m, n := range counts {
		out[string(m)] = n
	}
	return out
}

// methodRows renders method counts in phase order, skipping zeros.
func methodRows(counts map[string]int) [][]string {
	rows := make([][]string, 0, len(counts))
	seen := make(map[string]bool, len(counts))
	for _, m := range pairing.Methods {
		name := string(m)
		seen[name] = true
		if n := counts[name]; n > 0 {
			rows = append(rows, []string{name, fmt.Sprintf("%d", n)})
		}
	}
	var extra []string
	for name, n := range counts {
		if !seen[name] && n > 0 {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		rows = append(rows, []string{name, fmt.Sprintf("%d", counts[name])})
	}
	return rows
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func signedPercent(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"pairdex/internal/catalog"
	"pairdex/internal/index"
	"pairdex/internal/logging"
)

// AIMatchesKey is the passthrough record key holding external matches.
const AIMatchesKey = "AI_matches"

// FolderStats is the effectiveness of one directory.
type FolderStats struct {
	Path                 string         `json:"path"`
	ClassicMatches       int            `json:"classic_matches"`
	AIMatches            int            `json:"ai_matches"`
	FilesWithoutPreview  int            `json:"files_without_preview"`
	OtherImages          int            `json:"other_images"`
	UnmatchedFiles       []string       `json:"unmatched_files"`
	UnmatchedImages      []string       `json:"unmatched_images"`
	AIUnmatched          []string       `json:"ai_unmatched,omitempty"`
	MethodCounts         map[string]int `json:"method_counts,omitempty"`
	ClassicEffectiveness float64        `json:"classic_effectiveness"`
	AIEffectiveness      float64        `json:"ai_effectiveness"`
	ImprovementPercent   float64        `json:"improvement_percent"`
}

// Candidates is the number of content files that could have been paired.
func (f FolderStats) Candidates() int {
	return f.ClassicMatches + f.FilesWithoutPreview
}

// HasDifference reports whether AI and classic match counts disagree.
func (f FolderStats) HasDifference() bool {
	return f.AIMatches != f.ClassicMatches
}

// Totals aggregates every analyzed folder.
type Totals struct {
	FoldersAnalyzed      int            `json:"folders_analyzed"`
	FoldersSkipped       int            `json:"folders_skipped"`
	ClassicMatches       int            `json:"classic_matches"`
	AIMatches            int            `json:"ai_matches"`
	FilesWithoutPreview  int            `json:"files_without_preview"`
	OtherImages          int            `json:"other_images"`
	MethodCounts         map[string]int `json:"method_counts,omitempty"`
	ClassicEffectiveness float64        `json:"classic_effectiveness"`
	AIEffectiveness      float64        `json:"ai_effectiveness"`
	ImprovementPercent   float64        `json:"improvement_percent"`
}

// Report is the analysis of one tree.
type Report struct {
	Root        string        `json:"root"`
	GeneratedAt time.Time     `json:"generated_at"`
	Source      string        `json:"source"`
	Folders     []FolderStats `json:"folders"`
	Total       Totals        `json:"total"`
}

// Differences returns the folders where AI and classic counts disagree.
func (r Report) Differences() []FolderStats {
	var out []FolderStats
	for _, f := range r.Folders {
		if f.HasDifference() {
			out = append(out, f)
		}
	}
	return out
}

// Effectiveness returns matches as a percentage of total, or 0 when total is 0.
func Effectiveness(matches, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matches) / float64(total) * 100
}

type aiMatch struct {
	ArchiveFile string `json:"archive_file"`
}

// Analyze walks root for index records named filename and computes per-folder
// and total effectiveness. Unreadable records are logged and skipped.
func Analyze(root, filename string, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "report")
	if filename == "" {
		filename = index.DefaultFilename
	}
	root = filepath.Clean(root)

	rep := Report{Root: root, GeneratedAt: time.Now(), Source: "index"}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logging.WarnWithContext(logger, "directory skipped during report", "report_walk_failed",
				logging.String(logging.FieldDirectory, path),
				logging.Error(walkErr),
				logging.String(logging.FieldImpact, "records below this directory are not counted"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != filename || !d.Type().IsRegular() {
			return nil
		}
		dir := filepath.Dir(path)
		rec, err := index.Read(path)
		if err != nil || rec == nil {
			rep.Total.FoldersSkipped++
			logging.WarnWithContext(logger, "index record skipped during report", "report_record_unreadable",
				logging.String(logging.FieldDirectory, dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rescan the directory to rebuild its record"),
				logging.String(logging.FieldImpact, "directory is missing from the totals"),
			)
			return nil
		}
		rel, relErr := filepath.Rel(root, dir)
		if relErr != nil {
			rel = dir
		}
		rep.Folders = append(rep.Folders, analyzeRecord(rel, rec, logger))
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("walk %s: %w", root, err)
	}
	rep.finalize()
	return rep, nil
}

func analyzeRecord(rel string, rec *index.Record, logger *slog.Logger) FolderStats {
	stats := FolderStats{
		Path:                rel,
		ClassicMatches:      len(rec.FilesWithPreviews),
		FilesWithoutPreview: len(rec.FilesWithoutPreviews),
		OtherImages:         len(rec.OtherImages),
		UnmatchedFiles:      make([]string, 0, len(rec.FilesWithoutPreviews)),
		UnmatchedImages:     make([]string, 0, len(rec.OtherImages)),
	}
	for _, f := range rec.FilesWithoutPreviews {
		stats.UnmatchedFiles = append(stats.UnmatchedFiles, f.Name)
	}
	for _, img := range rec.OtherImages {
		stats.UnmatchedImages = append(stats.UnmatchedImages, img.Name)
	}
	sort.Strings(stats.UnmatchedFiles)
	sort.Strings(stats.UnmatchedImages)
	for _, f := range rec.FilesWithPreviews {
		if f.MatchMethod == "" {
			continue
		}
		if stats.MethodCounts == nil {
			stats.MethodCounts = make(map[string]int)
		}
		stats.MethodCounts[f.MatchMethod]++
	}

	if raw, ok := rec.Extra[AIMatchesKey]; ok {
		var matches []aiMatch
		if err := json.Unmarshal(raw, &matches); err != nil {
			logging.WarnWithContext(logger, "AI_matches entry malformed", "report_ai_matches_invalid",
				logging.String(logging.FieldDirectory, rel),
				logging.Error(err),
				logging.String(logging.FieldImpact, "AI matches counted as zero for this directory"),
			)
		} else {
			stats.AIMatches = len(matches)
			matched := make(map[string]bool, len(matches))
			for _, m := range matches {
				matched[m.ArchiveFile] = true
			}
			for _, name := range allContentNames(rec) {
				if !matched[name] {
					stats.AIUnmatched = append(stats.AIUnmatched, name)
				}
			}
		}
	}

	total := stats.Candidates()
	stats.ClassicEffectiveness = Effectiveness(stats.ClassicMatches, total)
	stats.AIEffectiveness = Effectiveness(stats.AIMatches, total)
	stats.ImprovementPercent = stats.AIEffectiveness - stats.ClassicEffectiveness
	return stats
}

func allContentNames(rec *index.Record) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range rec.FilesWithPreviews {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	for _, f := range rec.FilesWithoutPreviews {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

// FromCatalog builds a report from catalog summaries. AI matches are not
// tracked in the catalog and stay zero.
func FromCatalog(root string, dirs []catalog.DirectorySummary) Report {
	rep := Report{Root: filepath.Clean(root), GeneratedAt: time.Now(), Source: "catalog"}
	for _, d := range dirs {
		rel, err := filepath.Rel(rep.Root, d.Path)
		if err != nil {
			rel = d.Path
		}
		stats := FolderStats{
			Path:                rel,
			ClassicMatches:      d.Matched,
			FilesWithoutPreview: d.Unmatched,
			OtherImages:         d.OtherImages,
		}
		for method, n := range d.MethodCounts {
			if method == "none" || n == 0 {
				continue
			}
			if stats.MethodCounts == nil {
				stats.MethodCounts = make(map[string]int)
			}
			stats.MethodCounts[method] = n
		}
		total := stats.Candidates()
		stats.ClassicEffectiveness = Effectiveness(stats.ClassicMatches, total)
		stats.ImprovementPercent = -stats.ClassicEffectiveness
		rep.Folders = append(rep.Folders, stats)
	}
	rep.finalize()
	return rep
}

func (r *Report) finalize() {
	sort.Slice(r.Folders, func(i, j int) bool { return r.Folders[i].Path < r.Folders[j].Path })
	t := &r.Total
	for _, f := range r.Folders {
		t.FoldersAnalyzed++
		t.ClassicMatches += f.ClassicMatches
		t.AIMatches += f.AIMatches
		t.FilesWithoutPreview += f.FilesWithoutPreview
		t.OtherImages += f.OtherImages
		for method, n := range f.MethodCounts {
			if t.MethodCounts == nil {
				t.MethodCounts = make(map[string]int)
			}
			t.MethodCounts[method] += n
		}
	}
	total := t.ClassicMatches + t.FilesWithoutPreview
	t.ClassicEffectiveness = Effectiveness(t.ClassicMatches, total)
	t.AIEffectiveness = Effectiveness(t.AIMatches, total)
	t.ImprovementPercent = t.AIEffectiveness - t.ClassicEffectiveness
}

// ErrNoRecords is returned by callers that require at least one record.
var ErrNoRecords = errors.New("no index records found")

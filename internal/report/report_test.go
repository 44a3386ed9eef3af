package report

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"pairdex/internal/catalog"
	"pairdex/internal/index"
)

func writeRecord(t *testing.T, dir string, rec index.Record) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := index.Write(index.Path(dir, ""), rec); err != nil {
		t.Fatal(err)
	}
}

func files(names ...string) []index.FileEntry {
	out := make([]index.FileEntry, 0, len(names))
	for _, n := range names {
		out = append(out, index.FileEntry{Name: n})
	}
	return out
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEffectiveness(t *testing.T) {
	if Effectiveness(0, 0) != 0 {
		t.Fatal("zero total should be 0")
	}
	if !almost(Effectiveness(1, 4), 25) {
		t.Fatalf("Effectiveness(1,4) = %v", Effectiveness(1, 4))
	}
}

func TestAnalyzeTotals(t *testing.T) {
	root := t.TempDir()
	matched := files("a.zip", "b.zip", "c.zip")
	matched[0].MatchMethod = "exact"
	matched[1].MatchMethod = "exact"
	matched[2].MatchMethod = "learned"
	writeRecord(t, root, index.Record{
		FilesWithPreviews:    matched,
		FilesWithoutPreviews: files("d.zip"),
		OtherImages:          []index.ImageEntry{{Name: "x.jpg"}},
	})
	writeRecord(t, filepath.Join(root, "sub"), index.Record{
		FilesWithPreviews:    files("e.zip"),
		FilesWithoutPreviews: files("g.zip", "f.zip"),
		Extra: map[string]json.RawMessage{
			AIMatchesKey: json.RawMessage(`[{"archive_file":"e.zip"},{"archive_file":"f.zip"}]`),
		},
	})
	if err := os.WriteFile(filepath.Join(root, "sub", "notes.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err := Analyze(root, "", nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(rep.Folders) != 2 || rep.Folders[0].Path != "." || rep.Folders[1].Path != "sub" {
		t.Fatalf("folders = %+v", rep.Folders)
	}

	top := rep.Folders[0]
	if top.ClassicMatches != 3 || top.FilesWithoutPreview != 1 || top.OtherImages != 1 || top.AIMatches != 0 {
		t.Fatalf("top = %+v", top)
	}
	if !almost(top.ClassicEffectiveness, 75) || !almost(top.ImprovementPercent, -75) {
		t.Fatalf("top effectiveness = %+v", top)
	}
	if top.MethodCounts["exact"] != 2 || top.MethodCounts["learned"] != 1 {
		t.Fatalf("method counts = %v", top.MethodCounts)
	}

	sub := rep.Folders[1]
	if sub.AIMatches != 2 || sub.ClassicMatches != 1 {
		t.Fatalf("sub = %+v", sub)
	}
	if len(sub.UnmatchedFiles) != 2 || sub.UnmatchedFiles[0] != "f.zip" {
		t.Fatalf("unmatched files not sorted: %v", sub.UnmatchedFiles)
	}
	if len(sub.AIUnmatched) != 1 || sub.AIUnmatched[0] != "g.zip" {
		t.Fatalf("ai unmatched = %v", sub.AIUnmatched)
	}
	if !almost(sub.AIEffectiveness, 200.0/3) {
		t.Fatalf("ai effectiveness = %v", sub.AIEffectiveness)
	}

	total := rep.Total
	if total.FoldersAnalyzed != 2 || total.ClassicMatches != 4 || total.AIMatches != 2 || total.FilesWithoutPreview != 3 || total.OtherImages != 1 {
		t.Fatalf("total = %+v", total)
	}
	if !almost(total.ClassicEffectiveness, 4.0/7*100) || !almost(total.ImprovementPercent, (2.0-4.0)/7*100) {
		t.Fatalf("total effectiveness = %+v", total)
	}
	if diffs := rep.Differences(); len(diffs) != 2 {
		t.Fatalf("differences = %d", len(diffs))
	}
}

func TestAnalyzeSkipsCorruptRecords(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, index.Record{FilesWithPreviews: files("a.zip")})
	bad := filepath.Join(root, "bad")
	if err := os.MkdirAll(bad, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bad, "index.json"), []byte("{oops"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err := Analyze(root, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total.FoldersAnalyzed != 1 || rep.Total.FoldersSkipped != 1 {
		t.Fatalf("total = %+v", rep.Total)
	}
}

func TestAnalyzeMissingRoot(t *testing.T) {
	if _, err := Analyze(filepath.Join(t.TempDir(), "missing"), "", nil); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestFromCatalog(t *testing.T) {
	dirs := []catalog.DirectorySummary{
		{Path: "/data/b", Matched: 1, Unmatched: 1, MethodCounts: map[string]int{"prefix": 1, "none": 1}},
		{Path: "/data", Matched: 3, Unmatched: 0, OtherImages: 2, MethodCounts: map[string]int{"exact": 3}},
	}
	rep := FromCatalog("/data", dirs)
	if rep.Source != "catalog" || len(rep.Folders) != 2 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Folders[0].Path != "." || rep.Folders[1].Path != "b" {
		t.Fatalf("folders not sorted: %+v", rep.Folders)
	}
	if _, ok := rep.Folders[1].MethodCounts["none"]; ok {
		t.Fatal("none counted as a method")
	}
	if rep.Total.ClassicMatches != 4 || rep.Total.FilesWithoutPreview != 1 || !almost(rep.Total.ClassicEffectiveness, 80) {
		t.Fatalf("total = %+v", rep.Total)
	}
	if rep.Total.MethodCounts["exact"] != 3 || rep.Total.MethodCounts["prefix"] != 1 {
		t.Fatalf("method totals = %v", rep.Total.MethodCounts)
	}
}

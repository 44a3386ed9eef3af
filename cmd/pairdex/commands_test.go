package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pairdex/internal/index"
	"pairdex/internal/report"
	"pairdex/internal/testsupport"
)

func buildLibrary(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	dir := filepath.Join(env.cfg.Paths.WorkDir, "library")
	testsupport.Touch(t, dir, "alpha.zip", "alpha.jpg", "gamma.zip", "cover_art.png")
	return dir
}

func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
}

func TestScanWritesIndexes(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := buildLibrary(t, env)

	out, err := runCLI(t, []string{"scan", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var summary scanSummaryView
	decodeJSON(t, out, &summary)
	if summary.Root != env.cfg.Paths.WorkDir {
		t.Fatalf("root = %q, want work_dir %q", summary.Root, env.cfg.Paths.WorkDir)
	}
	if summary.Contents != 2 || summary.Matched != 1 || summary.Unmatched != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.MethodCounts["exact"] != 1 {
		t.Fatalf("method counts = %v", summary.MethodCounts)
	}
	if summary.RunID == "" {
		t.Fatal("expected catalog run id")
	}

	rec, err := index.Read(index.Path(dir, ""))
	if err != nil || rec == nil {
		t.Fatalf("read record: %v %v", rec, err)
	}
	if len(rec.FilesWithPreviews) != 1 || rec.FilesWithPreviews[0].PreviewName != "alpha.jpg" {
		t.Fatalf("files_with_previews = %+v", rec.FilesWithPreviews)
	}

	out, err = runCLI(t, []string{"scan", dir}, env.configPath)
	if err != nil {
		t.Fatalf("scan table: %v", err)
	}
	requireContains(t, out, "Directories indexed")
	requireContains(t, out, "exact")
}

func TestLearnThenMatch(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := buildLibrary(t, env)

	out, err := runCLI(t, []string{"learn", "gamma.zip", "cover_art.png"}, env.configPath)
	if err != nil {
		t.Fatalf("learn: %v", err)
	}
	requireContains(t, out, "Learned gamma -> cover_art")

	out, err = runCLI(t, []string{"match", dir, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	var view matchReportView
	decodeJSON(t, out, &view)
	methods := make(map[string]string)
	for _, p := range view.Pairs {
		methods[p.Content] = p.Method + ":" + p.Preview
	}
	if methods["gamma"] != "learned:cover_art.png" || methods["alpha"] != "exact:alpha.jpg" {
		t.Fatalf("pairs = %v", methods)
	}
	if _, err := os.Stat(index.Path(dir, "")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("match must not write a record, stat err = %v", err)
	}

	out, err = runCLI(t, []string{"learned", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("learned list: %v", err)
	}
	var pairs []learnedPairView
	decodeJSON(t, out, &pairs)
	if len(pairs) != 1 || pairs[0].Content != "gamma" || pairs[0].Preview != "cover_art" {
		t.Fatalf("learned pairs = %+v", pairs)
	}

	out, err = runCLI(t, []string{"learned", "forget", "GAMMA"}, env.configPath)
	if err != nil {
		t.Fatalf("learned forget: %v", err)
	}
	requireContains(t, out, "Forgot GAMMA")

	out, err = runCLI(t, []string{"learned", "forget", "gamma"}, env.configPath)
	if err != nil {
		t.Fatalf("learned forget again: %v", err)
	}
	requireContains(t, out, "No learned pair")
}

func TestLearnWithPathsRewritesRecord(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := buildLibrary(t, env)

	out, err := runCLI(t, []string{"learn", filepath.Join(dir, "gamma.zip"), filepath.Join(dir, "cover_art.png")}, env.configPath)
	if err != nil {
		t.Fatalf("learn: %v", err)
	}
	requireContains(t, out, "Learned gamma -> cover_art")
	requireContains(t, out, "Rewrote "+index.Path(dir, ""))

	record, err := index.Read(index.Path(dir, ""))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var gamma *index.FileEntry
	for i := range record.FilesWithPreviews {
		if record.FilesWithPreviews[i].Name == "gamma.zip" {
			gamma = &record.FilesWithPreviews[i]
		}
	}
	if gamma == nil {
		t.Fatalf("gamma.zip not paired: %+v", record.FilesWithPreviews)
	}
	if gamma.MatchMethod != "learned" || gamma.PreviewName != "cover_art.png" {
		t.Fatalf("gamma entry = %+v", *gamma)
	}

	data, err := os.ReadFile(env.cfg.Paths.LearnedPath)
	if err != nil {
		t.Fatalf("read learned pairs: %v", err)
	}
	var stored []map[string]any
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("decode learned pairs: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("learned pairs = %v", stored)
	}
	if stored[0]["archivePath"] != filepath.Join(dir, "gamma.zip") || stored[0]["imagePath"] != filepath.Join(dir, "cover_art.png") {
		t.Fatalf("stored paths = %v", stored[0])
	}
}

func TestLearnWithoutRescanLeavesRecordAlone(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := buildLibrary(t, env)

	if _, err := runCLI(t, []string{"learn", "--rescan=false", filepath.Join(dir, "gamma.zip"), "cover_art"}, env.configPath); err != nil {
		t.Fatalf("learn: %v", err)
	}
	if _, err := os.Stat(index.Path(dir, "")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("learn --rescan=false must not write a record, stat err = %v", err)
	}
}

func TestLearnRawKeepsExtensions(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := runCLI(t, []string{"learn", "--raw", "v1.2", "v1.2 cover"}, env.configPath); err != nil {
		t.Fatalf("learn --raw: %v", err)
	}
	out, err := runCLI(t, []string{"learned", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("learned list: %v", err)
	}
	var pairs []learnedPairView
	decodeJSON(t, out, &pairs)
	if len(pairs) != 1 || pairs[0].Content != "v1.2" {
		t.Fatalf("learned pairs = %+v", pairs)
	}
}

func TestLearnedPatterns(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteLearned(t, env.cfg.Paths.LearnedPath,
		"book one", "book_one",
		"book two", "book_two",
	)

	out, err := runCLI(t, []string{"learned", "patterns"}, env.configPath)
	if err != nil {
		t.Fatalf("learned patterns: %v", err)
	}
	requireContains(t, out, "2/2")
}

func TestReportFromIndexesAndCatalog(t *testing.T) {
	env := setupCLITestEnv(t)
	buildLibrary(t, env)

	if _, err := runCLI(t, []string{"report"}, env.configPath); !errors.Is(err, report.ErrNoRecords) {
		t.Fatalf("report before scan err = %v, want ErrNoRecords", err)
	}
	if _, err := runCLI(t, []string{"scan"}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	for _, args := range [][]string{
		{"report", "--json"},
		{"report", "--json", "--catalog"},
	} {
		out, err := runCLI(t, args, env.configPath)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		var rep report.Report
		decodeJSON(t, out, &rep)
		if rep.Total.ClassicMatches != 1 || rep.Total.FilesWithoutPreview != 1 {
			t.Fatalf("%v totals = %+v", args, rep.Total)
		}
		if rep.Total.ClassicEffectiveness != 50 {
			t.Fatalf("%v classic effectiveness = %v", args, rep.Total.ClassicEffectiveness)
		}
	}

	out, err := runCLI(t, []string{"report", "--all"}, env.configPath)
	if err != nil {
		t.Fatalf("report table: %v", err)
	}
	requireContains(t, out, "library")
	requireContains(t, out, "Classic effectiveness")
}

func TestCleanRemovesIndexes(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := buildLibrary(t, env)
	if _, err := runCLI(t, []string{"scan"}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	out, err := runCLIWithInput(t, []string{"clean"}, env.configPath, "n\n")
	if err != nil {
		t.Fatalf("clean declined: %v", err)
	}
	requireContains(t, out, "Aborted")
	if _, err := os.Stat(index.Path(dir, "")); err != nil {
		t.Fatalf("record removed despite declined prompt: %v", err)
	}

	out, err = runCLI(t, []string{"clean", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed 2 index files")
	if _, err := os.Stat(index.Path(dir, "")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("record still present, stat err = %v", err)
	}
}

func TestRescanSingleDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := buildLibrary(t, env)
	nested := filepath.Join(dir, "nested")
	testsupport.Touch(t, nested, "delta.zip")

	out, err := runCLI(t, []string{"rescan", dir}, env.configPath)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	requireContains(t, out, "Matched 1 of 2")
	if _, err := os.Stat(index.Path(nested, "")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("rescan must not descend, stat err = %v", err)
	}

	if _, err := runCLI(t, []string{"rescan"}, env.configPath); err == nil {
		t.Fatal("expected rescan without a directory to fail")
	}
}

package learned

import (
	"math"
	"testing"
)

func pairs(kv ...string) []Pair {
	out := make([]Pair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Pair{ContentBasename: kv[i], PreviewBasename: kv[i+1]})
	}
	return out
}

func TestDerivePatternsConfidence(t *testing.T) {
	got := DerivePatterns(pairs(
		"my_file", "my.file",
		"big_model", "big.model",
		"old_photo", "old photo",
		"unrelated", "cover",
	))
	if len(got) != 2 {
		t.Fatalf("expected 2 patterns, got %+v", got)
	}
	if got[0].Shape != "underscore_to_dot" || got[0].Count != 2 || got[0].Total != 4 {
		t.Fatalf("unexpected first pattern: %+v", got[0])
	}
	if math.Abs(got[0].Confidence-0.5) > 1e-9 {
		t.Fatalf("confidence = %v, want 0.5", got[0].Confidence)
	}
	if got[1].Shape != "underscore_to_space" || math.Abs(got[1].Confidence-0.25) > 1e-9 {
		t.Fatalf("unexpected second pattern: %+v", got[1])
	}
	if !got[0].Accepted(AcceptanceFloor) || got[1].Accepted(AcceptanceFloor) {
		t.Fatal("acceptance floor not applied as expected")
	}
}

func TestDerivePatternsTieKeepsRegistryOrder(t *testing.T) {
	got := DerivePatterns(pairs(
		"a-b", "a b",
		"c_d", "c d",
	))
	if len(got) != 2 {
		t.Fatalf("expected 2 patterns, got %+v", got)
	}
	if got[0].Shape != "underscore_to_space" || got[1].Shape != "hyphen_to_space" {
		t.Fatalf("tie order wrong: %+v", got)
	}
}

func TestDerivePatternsIsCaseInsensitive(t *testing.T) {
	got := DerivePatterns(pairs("My_File", "MY.FILE"))
	if len(got) != 1 || got[0].Shape != "underscore_to_dot" || got[0].Confidence != 1 {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestDerivePatternsEmpty(t *testing.T) {
	if got := DerivePatterns(nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if got := DerivePatterns(pairs("same", "same")); len(got) != 0 {
		t.Fatalf("identity pair supports no shape, got %+v", got)
	}
}

func TestPatternApply(t *testing.T) {
	tests := []struct {
		shape string
		in    string
		want  string
	}{
		{"underscore_to_dot", "my_cool_file", "my.cool.file"},
		{"underscore_to_space", "my_file", "my file"},
		{"hyphen_to_space", "my-file", "my file"},
		{"space_to_underscore", "my file", "my_file"},
		{"unknown", "my_file", "my_file"},
	}
	for _, tt := range tests {
		if got := (Pattern{Shape: tt.shape}).Apply(tt.in); got != tt.want {
			t.Errorf("%s.Apply(%q) = %q, want %q", tt.shape, tt.in, got, tt.want)
		}
	}
}

func TestSnapshotLookup(t *testing.T) {
	snap := NewSnapshot(pairs(
		"proj_x", "projX_cover",
		"other", "other_cover",
		"PROJ_X", "projX_final",
	))
	if snap.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", snap.Len())
	}
	got, ok := snap.Lookup("Proj_X")
	if !ok || got != "projX_final" {
		t.Fatalf("Lookup = %q, %v", got, ok)
	}
	if _, ok := snap.Lookup(""); ok {
		t.Fatal("empty lookup should miss")
	}

	var nilSnap *Snapshot
	if _, ok := nilSnap.Lookup("proj_x"); ok {
		t.Fatal("nil snapshot should miss")
	}
	if nilSnap.Patterns() != nil || nilSnap.Len() != 0 {
		t.Fatal("nil snapshot should be empty")
	}
}

func TestLookupScansFromEnd(t *testing.T) {
	list := pairs("a", "first", "b", "x", "A", "second")
	got, ok := Lookup("a", list)
	if !ok || got != "second" {
		t.Fatalf("Lookup = %q, %v", got, ok)
	}
	if _, ok := Lookup("zzz", list); ok {
		t.Fatal("unexpected hit")
	}
}

func TestDedupeKeepsLastPosition(t *testing.T) {
	got := Dedupe(pairs("a", "1", "b", "2", "A", "3", "", "x"))
	if len(got) != 2 || got[0].ContentBasename != "b" || got[1].PreviewBasename != "3" {
		t.Fatalf("unexpected dedupe: %+v", got)
	}
}

package textutil

import (
	"slices"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  My File  ", "my file"},
		{"ÉTÉ_2020", "été_2020"},
		// decomposed e + combining acute folds to the precomposed form
		{"Cafe\u0301", "caf\u00e9"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		in       string
		wantBase string
		wantExt  string
	}{
		{"photo.JPG", "photo", ".JPG"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".hidden", ".hidden", ""},
		{"/tmp/dir/model.stl", "model", ".stl"},
	}
	for _, tt := range tests {
		base, ext := SplitExt(tt.in)
		if base != tt.wantBase || ext != tt.wantExt {
			t.Errorf("SplitExt(%q) = (%q, %q), want (%q, %q)", tt.in, base, ext, tt.wantBase, tt.wantExt)
		}
	}
}

func TestNormalizeContainsExpectedVariants(t *testing.T) {
	got := Normalize("My File")
	for _, want := range []string{"my file", "my_file", "my-file"} {
		if !slices.Contains(got, want) {
			t.Errorf("Normalize(%q) = %v, missing %q", "My File", got, want)
		}
	}
	if !slices.IsSorted(got) {
		t.Errorf("Normalize result not sorted: %v", got)
	}
}

func TestNormalizeIsIdempotentOnFoldedForm(t *testing.T) {
	for _, name := range []string{"Summer_Trip-01", "x", "a  b", "ÖL-Bild"} {
		variants := Normalize(name)
		if len(variants) == 0 {
			t.Fatalf("Normalize(%q) returned no variants", name)
		}
		if !slices.Contains(variants, Fold(name)) {
			t.Errorf("Normalize(%q) = %v, missing folded form", name, variants)
		}
	}
}

func TestNormalizeSeparatorSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"My File", "My_File"},
		{"my-file", "MY FILE"},
		{"a_b", "a-b"},
	}
	for _, p := range pairs {
		left, right := Normalize(p[0]), Normalize(p[1])
		shared := false
		for _, v := range left {
			if slices.Contains(right, v) {
				shared = true
				break
			}
		}
		if !shared {
			t.Errorf("Normalize(%q)=%v and Normalize(%q)=%v share no variant", p[0], left, p[1], right)
		}
	}
}

func TestNormalizeCollapsesRepeatedSeparators(t *testing.T) {
	got := Normalize("big__model - final")
	for _, want := range []string{"big model final", "big_model_final"} {
		if !slices.Contains(got, want) {
			t.Errorf("Normalize() = %v, missing %q", got, want)
		}
	}
}

func TestCollapseSeparators(t *testing.T) {
	if got := CollapseSeparators(" A__b - C "); got != "a b c" {
		t.Fatalf("CollapseSeparators() = %q, want %q", got, "a b c")
	}
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"cover.jpg", true},
		{"cover.JPEG", true},
		{"scan.tif", true},
		{"icon.svg", true},
		{"model.stl", false},
		{"archive.zip", false},
		{"noext", false},
		{"index.json", false},
	}
	for _, tt := range tests {
		if got := IsImageFile(tt.name); got != tt.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

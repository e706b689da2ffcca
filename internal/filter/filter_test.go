package filter

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"reason/internal/paper"
)

func patterns(res []*regexp.Regexp) []string {
	out := make([]string, 0, len(res))
	for _, re := range res {
		out = append(out, re.String())
	}
	return out
}

func mustCompile(t *testing.T, args ...string) *Piece {
	t.Helper()
	f, err := Compile(args, false)
	if err != nil {
		t.Fatalf("Compile(%q): %v", args, err)
	}
	return f
}

func TestCompileKeywords(t *testing.T) {
	f := mustCompile(t,
		"shadow", "as", "ShadowTutor", "by", "Chung", "by1", "Jae",
		"at", "ICPP", "on", "Parallel", "in", "2020", "is", "edge", "not", "todo", "tutor")

	got := map[string][]string{
		"title":        patterns(f.Title),
		"nickname":     patterns(f.Nickname),
		"author":       patterns(f.Author),
		"first-author": patterns(f.FirstAuthor),
		"venue":        patterns(f.Venue),
		"year":         patterns(f.Year),
		"is":           patterns(f.Is),
		"not":          patterns(f.Not),
	}
	want := map[string][]string{
		"title":        {"shadow", "tutor"},
		"nickname":     {"ShadowTutor"},
		"author":       {"Chung"},
		"first-author": {"Jae"},
		"venue":        {"ICPP", "Parallel"},
		"year":         {"2020"},
		"is":           {"edge"},
		"not":          {"todo"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compile (-want +got):\n%s", diff)
	}
}

func TestCompileDanglingKeywordIsTitle(t *testing.T) {
	f := mustCompile(t, "shadow", "by")
	if diff := cmp.Diff([]string{"shadow", "by"}, patterns(f.Title)); diff != "" {
		t.Errorf("title patterns (-want +got):\n%s", diff)
	}
	if len(f.Author) != 0 {
		t.Errorf("dangling keyword produced author patterns: %v", patterns(f.Author))
	}
}

func TestCompileKeywordConsumesKeyword(t *testing.T) {
	f := mustCompile(t, "by", "in")
	if diff := cmp.Diff([]string{"in"}, patterns(f.Author)); diff != "" {
		t.Errorf("author patterns (-want +got):\n%s", diff)
	}
	if len(f.Year) != 0 || len(f.Title) != 0 {
		t.Errorf("unexpected patterns: year %v title %v", patterns(f.Year), patterns(f.Title))
	}
}

func TestCompileBadRegex(t *testing.T) {
	_, err := Compile([]string{"by", "(unclosed"}, false)
	if !errors.Is(err, ErrFilterBuild) {
		t.Fatalf("expected ErrFilterBuild, got %v", err)
	}
}

func TestCompileCaseInsensitive(t *testing.T) {
	p := &paper.Paper{Title: "ShadowTutor", Authors: []string{"Jae-Won Chung"}, Venue: "ICPP", Year: "2020"}

	sensitive, err := Compile([]string{"shadowtutor"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if sensitive.Matches(p) {
		t.Errorf("case-sensitive filter matched different case")
	}
	insensitive, err := Compile([]string{"shadowtutor"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if !insensitive.Matches(p) {
		t.Errorf("case-insensitive filter did not match")
	}
}

func TestMatches(t *testing.T) {
	p := &paper.Paper{
		Title:   "ShadowTutor: Distributed Partial Distillation",
		Authors: []string{"Jae-Won Chung", "X"},
		Venue:   "ICPP",
		Year:    "2020",
		Labels:  []string{"edge", "video"},
	}
	tests := []struct {
		args []string
		want bool
	}{
		{nil, true},
		{[]string{"by", "Chung"}, true},
		{[]string{"by1", "Jae"}, true},
		{[]string{"by1", "^X$"}, false},
		{[]string{"by", "^X$"}, true},
		{[]string{"by", "Chung", "by", "^X$"}, true},
		{[]string{"by", "Chung", "by", "Kim"}, false},
		{[]string{"Shadow", "Distill"}, true},
		{[]string{"Shadow", "Quantum"}, false},
		{[]string{"as", "."}, false},
		{[]string{"as", "^$"}, true},
		{[]string{"at", "icpp"}, false},
		{[]string{"in", "20"}, true},
		{[]string{"is", "edge"}, true},
		{[]string{"is", "edge", "is", "vid"}, true},
		{[]string{"is", "todo"}, false},
		{[]string{"not", "todo"}, true},
		{[]string{"not", "vid"}, false},
	}
	for _, tt := range tests {
		f := mustCompile(t, tt.args...)
		if got := f.Matches(p); got != tt.want {
			t.Errorf("Compile(%q).Matches = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	if !(&Piece{}).IsEmpty() {
		t.Errorf("zero piece is not empty")
	}
	if !mustCompile(t).IsEmpty() {
		t.Errorf("piece compiled from no args is not empty")
	}
	if mustCompile(t, "not", "x").IsEmpty() {
		t.Errorf("piece with a not-label constraint is empty")
	}
}

func TestMergeOrderPreserving(t *testing.T) {
	a := mustCompile(t, "a1", "by", "x", "a2")
	b := mustCompile(t, "b1", "in", "2020")
	c := mustCompile(t, "c1", "by", "y")

	ab := Merge(a, b)
	if diff := cmp.Diff(append(patterns(a.Title), patterns(b.Title)...), patterns(ab.Title)); diff != "" {
		t.Errorf("merge title (-want +got):\n%s", diff)
	}

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))
	flat := Merge(a, b, c)
	for _, m := range []*Piece{left, right} {
		if diff := cmp.Diff(patterns(flat.Title), patterns(m.Title)); diff != "" {
			t.Errorf("merge is not associative on title (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(patterns(flat.Author), patterns(m.Author)); diff != "" {
			t.Errorf("merge is not associative on author (-want +got):\n%s", diff)
		}
	}
	if diff := cmp.Diff([]string{"x", "y"}, patterns(flat.Author)); diff != "" {
		t.Errorf("merged author (-want +got):\n%s", diff)
	}
}

func TestPieceString(t *testing.T) {
	if got := (&Piece{}).String(); got != "no filter" {
		t.Errorf("empty piece String() = %q", got)
	}
	got := mustCompile(t, "shadow", "by", "Chung", "by", "Kim").String()
	want := "title matches 'shadow', author matches 'Chung' and 'Kim'"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

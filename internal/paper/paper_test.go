package paper

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var now = time.Date(2022, 3, 1, 9, 30, 0, 0, time.UTC)

func TestFromArgs(t *testing.T) {
	p, err := FromArgs([]string{
		"Reason: A Cool New System",
		"by", "Jae-Won Chung, Chaehyun Jeong",
		"at", "OSDI",
		"in", "2022",
		"as", "Reason",
		"is", "systems",
		"is", "cli",
	}, now)
	if err != nil {
		t.Fatalf("FromArgs: %v", err)
	}
	want := Paper{
		Title:    "Reason: A Cool New System",
		Nickname: "Reason",
		Authors:  []string{"Jae-Won Chung", "Chaehyun Jeong"},
		Venue:    "OSDI",
		Year:     "2022",
		Labels:   []string{"cli", "systems"},
		Status:   []Status{{Kind: StatusAdded, At: now}},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("FromArgs (-want +got):\n%s", diff)
	}
}

func TestFromArgsMissingFields(t *testing.T) {
	_, err := FromArgs([]string{"Some Title", "at", "ATC"}, now)
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	for _, field := range []string{"authors(by)", "year(in)"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
	if strings.Contains(err.Error(), "venue") {
		t.Errorf("error %q mentions a given field", err)
	}
}

func TestFromArgsDuplicateField(t *testing.T) {
	tests := []struct {
		args  []string
		field string
	}{
		{[]string{"A", "B"}, "title"},
		{[]string{"A", "at", "OSDI", "on", "SOSP"}, "venue"},
		{[]string{"A", "in", "2020", "in", "2021"}, "year"},
	}
	for _, tt := range tests {
		_, err := FromArgs(tt.args, now)
		var dup *DuplicateFieldError
		if !errors.As(err, &dup) {
			t.Fatalf("FromArgs(%q): expected DuplicateFieldError, got %v", tt.args, err)
		}
		if dup.Field != tt.field {
			t.Errorf("FromArgs(%q): duplicate field %q, want %q", tt.args, dup.Field, tt.field)
		}
	}
}

func TestParseEditDanglingKeyword(t *testing.T) {
	_, err := ParseEdit([]string{"by"})
	if !errors.Is(err, ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
}

func TestApplyLabels(t *testing.T) {
	p := Paper{Title: "T", Authors: []string{"A"}, Labels: []string{"ml", "todo"}}
	e, err := ParseEdit([]string{"not", "todo", "is", "read-later", "is", "ml", "in", "2019"})
	if err != nil {
		t.Fatalf("ParseEdit: %v", err)
	}
	p.Apply(e)
	if diff := cmp.Diff([]string{"ml", "read-later"}, p.Labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	if p.Year != "2019" {
		t.Errorf("year = %q, want 2019", p.Year)
	}
	if p.Title != "T" {
		t.Errorf("title changed to %q", p.Title)
	}
}

func TestField(t *testing.T) {
	p := Paper{
		Title:   "ShadowTutor",
		Authors: []string{"Jae-Won Chung", "Jae-Yun Kim"},
		Venue:   "ICPP",
		Year:    "2020",
		Labels:  []string{"edge", "video"},
		Status:  []Status{{Kind: StatusAdded, At: now}, {Kind: StatusRead, At: now.Add(time.Hour)}},
	}
	tests := map[string]string{
		"title":        "ShadowTutor",
		"authors":      "Jae-Won Chung, Jae-Yun Kim",
		"first-author": "Jae-Won Chung",
		"venue":        "ICPP",
		"year":         "2020",
		"labels":       "edge, video",
		"nickname":     "",
	}
	for column, want := range tests {
		if got := p.Field(column); got != want {
			t.Errorf("Field(%q) = %q, want %q", column, got, want)
		}
	}
	if got := p.Field("state"); !strings.HasPrefix(got, "READ") {
		t.Errorf("Field(state) = %q, want the latest (read) status", got)
	}
	if at, ok := p.LastRead(); !ok || !at.Equal(now.Add(time.Hour)) {
		t.Errorf("LastRead = %v, %v", at, ok)
	}
}

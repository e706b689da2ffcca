package app

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestConfirmAnswer(t *testing.T) {
	tests := []struct {
		answer string
		def    bool
		yes    bool
	}{
		{"y", false, true},
		{"YES", false, true},
		{" n ", true, false},
		{"no", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, false},
	}
	for _, tt := range tests {
		err := confirmAnswer(tt.answer, tt.def)
		if got := err == nil; got != tt.yes {
			t.Errorf("confirmAnswer(%q, %v) = %v, want yes=%v", tt.answer, tt.def, err, tt.yes)
		}
		if err != nil && !errors.Is(err, ErrDeclined) {
			t.Errorf("confirmAnswer(%q, %v) = %v, want ErrDeclined", tt.answer, tt.def, err)
		}
	}
}

func TestPrompter(t *testing.T) {
	var shown bytes.Buffer
	p := NewPrompter(NewPlainReader(strings.NewReader("\nOSDI\ny\n"), &shown))

	got, err := p.Ask("title", "From PDF")
	if err != nil || got != "From PDF" {
		t.Fatalf("Ask = %q, %v; want the default", got, err)
	}
	if got, err := p.Ask("venue", ""); err != nil || got != "OSDI" {
		t.Fatalf("Ask = %q, %v", got, err)
	}
	if err := p.Confirm("Remove 2 papers?", false); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !strings.Contains(shown.String(), `title (default: "From PDF"): `) || !strings.Contains(shown.String(), "Remove 2 papers? [y/N] ") {
		t.Fatalf("prompts not shown: %q", shown.String())
	}
	// Input is exhausted: the question is declined.
	if err := p.Confirm("Open 2 papers?", true); !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined at EOF, got %v", err)
	}
}

func TestPlainReader(t *testing.T) {
	r := NewPlainReader(strings.NewReader("one\r\ntwo"), nil)
	for _, want := range []string{"one", "two"} {
		got, err := r.ReadLine(">> ")
		if err != nil || got != want {
			t.Fatalf("ReadLine = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := r.ReadLine(">> "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

package app

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeHistory struct {
	lines []string
}

func (h *fakeHistory) Add(text string) (int, error) {
	h.lines = append(h.lines, text)
	return len(h.lines), nil
}

func TestREPL(t *testing.T) {
	env := newTestEnv(t)
	var out, errOut bytes.Buffer
	hist := &fakeHistory{}
	repl := &REPL{
		Shell:   env.sh,
		Reader:  NewPlainReader(strings.NewReader("ls Deep\n\nbogus\nexit\nwc\n"), nil),
		History: hist,
		Out:     &out,
		Err:     &errOut,
	}
	if err := repl.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Deep Learning") {
		t.Fatalf("missing table in output:\n%s", out.String())
	}
	if got := errOut.String(); got != "error: unknown command: 'bogus'\n" {
		t.Fatalf("stderr = %q", got)
	}
	// exit stops the loop, so wc never runs.
	if diff := cmp.Diff([]string{"ls Deep", "bogus", "exit"}, hist.lines); diff != "" {
		t.Fatalf("history (-want +got):\n%s", diff)
	}
	if strings.Contains(out.String(), "papers.") {
		t.Fatalf("wc ran after exit:\n%s", out.String())
	}
}

func TestREPLEndsAtEOF(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer
	repl := &REPL{
		Shell:  env.sh,
		Reader: NewPlainReader(strings.NewReader("wc"), nil),
		Out:    &out,
		Err:    io.Discard,
	}
	if err := repl.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "3 papers.\n" {
		t.Fatalf("output = %q", got)
	}
}

type failingReader struct{}

func (failingReader) ReadLine(string) (string, error) {
	return "", errors.New("terminal gone")
}

func TestREPLReadError(t *testing.T) {
	env := newTestEnv(t)
	repl := &REPL{Shell: env.sh, Reader: failingReader{}, Out: io.Discard, Err: io.Discard}
	if err := repl.Run(); err == nil || !strings.Contains(err.Error(), "terminal gone") {
		t.Fatalf("expected the read error, got %v", err)
	}
}

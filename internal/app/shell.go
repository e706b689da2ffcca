// Package app implements the reason shell: the command registry, the pipe
// execution chain, the commands themselves and the interactive loop.
package app

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"reason/internal/config"
	"reason/internal/filter"
	"reason/internal/logutil"
	"reason/internal/paper"
	"reason/internal/parse"
	"reason/internal/theme"
)

var logger = logutil.GetLogger("[app] ")

var (
	ErrExit        = errors.New("exit requested")
	ErrNoSelection = errors.New("this command needs papers piped into it")
)

// UnknownCommandError reports a command name missing from the registry.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: '%s'", e.Name)
}

// Output is the result of one command. The concrete types are None,
// Selection and Message.
type Output interface {
	output()
}

// None is produced by commands with nothing to show.
type None struct{}

// Selection is an ordered list of indices into State.Papers.
type Selection []int

// Message is text shown to the user as is.
type Message string

func (None) output()      {}
func (Selection) output() {}
func (Message) output()   {}

// Input is handed to an executor. Args holds the whole argument vector with
// the command name first. Piped is set when the previous command produced a
// selection, which is then in Selection.
type Input struct {
	Args      []string
	Selection Selection
	Piped     bool
}

type Executor func(sh *Shell, in Input) (Output, error)

// Registry maps command names to executors.
type Registry map[string]Executor

// State owns the paper list and the filter history.
type State struct {
	Papers  []paper.Paper
	Filters *filter.History
}

func NewState(papers []paper.Paper) *State {
	if papers == nil {
		papers = []paper.Paper{}
	}
	return &State{Papers: papers, Filters: filter.NewHistory()}
}

// Select returns the papers matching f in store order. When within is not
// nil only those indices are considered, in their given order.
func (s *State) Select(f *filter.Piece, within Selection) Selection {
	sel := Selection{}
	if within != nil {
		for _, i := range within {
			if i >= 0 && i < len(s.Papers) && f.Matches(&s.Papers[i]) {
				sel = append(sel, i)
			}
		}
		return sel
	}
	for i := range s.Papers {
		if f.Matches(&s.Papers[i]) {
			sel = append(sel, i)
		}
	}
	return sel
}

// Remove deletes the selected papers, keeping the order of the rest.
func (s *State) Remove(sel Selection) int {
	idx := slices.Clone(sel)
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	idx = slices.Compact(idx)
	removed := 0
	for _, i := range idx {
		if i < 0 || i >= len(s.Papers) {
			continue
		}
		s.Papers = slices.Delete(s.Papers, i, i+1)
		removed++
	}
	return removed
}

// Shell carries everything a command may touch.
type Shell struct {
	State    *State
	Config   *config.Config
	Registry Registry
	Theme    theme.Theme
	// Width bounds rendered tables; zero leaves them unbounded.
	Width int
	// Styled enables terminal styling of manual pages.
	Styled bool

	Prompter  Prompter
	Launcher  Launcher
	Clipboard Clipboard
	Arxiv     ArxivClient
	Usenix    UsenixClient
	PDFInfo   func(path string) (PDFInfo, error)

	// Out receives progress reports printed while a command runs.
	Out io.Writer
	Now func() time.Time
}

func (sh *Shell) now() time.Time {
	if sh.Now != nil {
		return sh.Now()
	}
	return time.Now()
}

func (sh *Shell) reportf(format string, args ...any) {
	if sh.Out == nil {
		return
	}
	fmt.Fprintf(sh.Out, format+"\n", args...)
}

// Run executes a parsed command line. Each command receives the previous
// output as its selection when that output is a Selection. A failing stage
// stops the chain; changes made by earlier stages are kept.
func (sh *Shell) Run(cmds [][]string) (Output, error) {
	if len(cmds) == 0 || (len(cmds) == 1 && len(cmds[0]) == 0) {
		return None{}, nil
	}
	for i, args := range cmds {
		if len(args) > 0 {
			continue
		}
		switch i {
		case 0:
			return nil, parse.ErrLeadingPipe
		case len(cmds) - 1:
			return nil, parse.ErrTrailingPipe
		default:
			return nil, parse.ErrDoublePipe
		}
	}

	executors := make([]Executor, len(cmds))
	for i, args := range cmds {
		e, ok := sh.Registry[args[0]]
		if !ok {
			return nil, &UnknownCommandError{Name: args[0]}
		}
		executors[i] = e
	}

	var out Output = None{}
	for i, args := range cmds {
		in := Input{Args: args}
		if sel, ok := out.(Selection); ok && i > 0 {
			in.Selection = sel
			in.Piped = true
		}
		var err error
		out, err = executors[i](sh, in)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = None{}
		}
	}
	return out, nil
}

// Execute parses, runs and renders one command line.
func (sh *Shell) Execute(line string) (string, error) {
	cmds, err := parse.Line(line)
	if err != nil {
		return "", err
	}
	logger.Printf("run %q (%d stages)", line, len(cmds))
	out, err := sh.Run(cmds)
	if err != nil {
		return "", err
	}
	return sh.Render(out), nil
}

// Render turns an output into the text shown to the user.
func (sh *Shell) Render(out Output) string {
	switch out := out.(type) {
	case None:
		return ""
	case Message:
		return strings.TrimRight(string(out), "\n")
	case Selection:
		return renderTable(sh.State.Papers, out, sh.Config.Display.TableColumns, sh.Theme, sh.Width)
	default:
		panic(fmt.Sprintf("app: unknown output %T", out))
	}
}

// selectPapers returns the piped selection, or the result of ls run with the
// command's own arguments.
func selectPapers(sh *Shell, in Input) (Selection, error) {
	if in.Piped {
		return in.Selection, nil
	}
	out, err := list(sh, in)
	if err != nil {
		return nil, err
	}
	sel, ok := out.(Selection)
	if !ok {
		panic(fmt.Sprintf("app: ls returned %T instead of a selection", out))
	}
	return sel, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

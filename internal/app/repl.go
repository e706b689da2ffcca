package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const DefaultPrompt = ">> "

// History stores submitted command lines.
type History interface {
	Add(text string) (int, error)
}

// REPL reads command lines and runs them until the input ends or exit is
// entered.
type REPL struct {
	Shell   *Shell
	Reader  LineReader
	History History
	Out     io.Writer
	Err     io.Writer
	Prompt  string
}

func (r *REPL) Run() error {
	prompt := r.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	for {
		line, err := r.Reader.ReadLine(prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.remember(line)

		out, err := r.Shell.Execute(line)
		if IsExit(err) {
			return nil
		}
		if err != nil {
			r.printError(err)
			continue
		}
		if out != "" {
			fmt.Fprintln(r.Out, out)
		}
	}
}

func (r *REPL) remember(line string) {
	if r.History != nil {
		if _, err := r.History.Add(line); err != nil {
			logger.Printf("history: %v", err)
		}
	}
	if rec, ok := r.Reader.(interface{ Remember(string) }); ok {
		rec.Remember(line)
	}
}

func (r *REPL) printError(err error) {
	msg := fmt.Sprintf("error: %v", err)
	if r.Shell.Styled {
		msg = r.Shell.Theme.Style(r.Shell.Theme.Components.Error).Render(msg)
	}
	fmt.Fprintln(r.Err, msg)
}

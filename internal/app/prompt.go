package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrDeclined = errors.New("cancelled")

// LineReader reads one line of user input after showing prompt. It returns
// io.EOF when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Prompter asks the user questions while a command runs.
type Prompter interface {
	// Confirm returns nil on yes and ErrDeclined otherwise. An empty answer
	// picks def.
	Confirm(question string, def bool) error
	// Ask returns the answer, or def when the answer is empty.
	Ask(label, def string) (string, error)
}

// linePrompter asks through the same reader the shell reads commands from.
type linePrompter struct {
	r LineReader
}

func NewPrompter(r LineReader) Prompter {
	return &linePrompter{r: r}
}

func (p *linePrompter) Confirm(question string, def bool) error {
	yn := " [y/N] "
	if def {
		yn = " [Y/n] "
	}
	answer, err := p.r.ReadLine(question + yn)
	if err != nil && !(errors.Is(err, io.EOF) && answer != "") {
		return fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	return confirmAnswer(answer, def)
}

func confirmAnswer(answer string, def bool) error {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	case "n", "no":
		return ErrDeclined
	case "":
		if def {
			return nil
		}
		return ErrDeclined
	default:
		return fmt.Errorf("%w: invalid answer %q", ErrDeclined, answer)
	}
}

func (p *linePrompter) Ask(label, def string) (string, error) {
	answer, err := p.r.ReadLine(fmt.Sprintf("%s (default: %q): ", label, def))
	if err != nil && !(errors.Is(err, io.EOF) && answer != "") {
		return "", fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return strings.TrimSpace(def), nil
	}
	return answer, nil
}

// PlainReader reads lines from a non-interactive source. Prompts are written
// to Out when it is set.
type PlainReader struct {
	r   *bufio.Reader
	Out io.Writer
}

func NewPlainReader(r io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{r: bufio.NewReader(r), Out: out}
}

func (p *PlainReader) ReadLine(prompt string) (string, error) {
	if p.Out != nil && prompt != "" {
		fmt.Fprint(p.Out, prompt)
	}
	line, err := p.r.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

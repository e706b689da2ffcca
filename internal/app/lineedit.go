package app

import (
	"io"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// lineModel edits a single line. Up and Down walk the history, Ctrl+C clears
// the line and Ctrl+D on an empty line ends the input.
type lineModel struct {
	input   textinput.Model
	history []string
	pos     int
	draft   string
	done    bool
	eof     bool
}

func newLineModel(prompt string, style lipgloss.Style, history []string) lineModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.PromptStyle = style
	ti.Placeholder = ""
	ti.Cursor.Style = ti.Cursor.Style.Bold(true)
	ti.Focus()
	return lineModel{input: ti, history: history, pos: len(history)}
}

func (m lineModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.eof = true
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyCtrlC:
			m.input.SetValue("")
			m.pos = len(m.history)
			m.draft = ""
			return m, nil
		case tea.KeyUp:
			if m.pos > 0 {
				if m.pos == len(m.history) {
					m.draft = m.input.Value()
				}
				m.pos--
				m.input.SetValue(m.history[m.pos])
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			if m.pos < len(m.history) {
				m.pos++
				if m.pos == len(m.history) {
					m.input.SetValue(m.draft)
				} else {
					m.input.SetValue(m.history[m.pos])
				}
				m.input.CursorEnd()
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m lineModel) View() string {
	if m.done {
		// Leave the submitted line on screen without the cursor.
		return m.input.PromptStyle.Render(m.input.Prompt) + m.input.Value() + "\n"
	}
	return m.input.View()
}

// TerminalReader reads lines with an interactive editor on a terminal.
type TerminalReader struct {
	// History is recalled with Up and Down, oldest first.
	History     []string
	PromptStyle lipgloss.Style
	In          io.Reader
	Out         io.Writer
}

func (r *TerminalReader) ReadLine(prompt string) (string, error) {
	var opts []tea.ProgramOption
	if r.In != nil {
		opts = append(opts, tea.WithInput(r.In))
	}
	if r.Out != nil {
		opts = append(opts, tea.WithOutput(r.Out))
	}
	p := tea.NewProgram(newLineModel(prompt, r.PromptStyle, r.History), opts...)
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m := final.(lineModel)
	if m.eof || !m.done {
		return "", io.EOF
	}
	return m.input.Value(), nil
}

// Remember makes line available to Up in later reads.
func (r *TerminalReader) Remember(line string) {
	if n := len(r.History); n > 0 && r.History[n-1] == line {
		return
	}
	r.History = append(r.History, line)
}

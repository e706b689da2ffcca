package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"reason/docs"
)

const defaultManWidth = 80

// manual renders the manual page of a command, or the overview.
func manual(sh *Shell, in Input) (Output, error) {
	name := ""
	if len(in.Args) > 1 {
		name = in.Args[1]
	}
	page, ok := docs.Page(name)
	if !ok {
		return nil, fmt.Errorf("no manual entry for '%s' (available: %s)", name, strings.Join(docs.Commands(), ", "))
	}
	return Message(renderMarkdown(page, sh.Styled, sh.Width)), nil
}

// renderMarkdown formats a page for the terminal. The raw Markdown is
// returned when rendering fails.
func renderMarkdown(page string, styled bool, width int) string {
	if width <= 0 || width > 120 {
		width = defaultManWidth
	}
	style := glamour.WithStandardStyle("notty")
	if styled {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		logger.Printf("man renderer: %v", err)
		return page
	}
	out, err := r.Render(page)
	if err != nil {
		logger.Printf("man render: %v", err)
		return page
	}
	return strings.Trim(out, "\n")
}

package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"reason/internal/paper"
	"reason/internal/theme"
)

var columnHeaders = map[string]string{
	"title":        "Title",
	"nickname":     "Nickname",
	"authors":      "Authors",
	"first-author": "First Author",
	"venue":        "Venue",
	"year":         "Year",
	"labels":       "Labels",
	"state":        "State",
}

// renderTable draws the selected papers with one row per paper, in selection
// order, and the configured columns.
func renderTable(papers []paper.Paper, sel Selection, columns []string, th theme.Theme, width int) string {
	icons := th.IconSet()
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = columnHeaders[col]
	}

	rows := make([][]string, 0, len(sel))
	for _, i := range sel {
		if i < 0 || i >= len(papers) {
			continue
		}
		p := &papers[i]
		row := make([]string, len(columns))
		for c, col := range columns {
			row[c] = cell(p, col, icons)
		}
		rows = append(rows, row)
	}

	headerStyle := th.Style(th.Components.TableHeader).Padding(0, 1).Align(lipgloss.Center)
	bodyStyle := th.Style(th.Components.TableBody).Padding(0, 1)
	t := table.New().
		Border(th.Border()).
		BorderStyle(th.BorderStyle()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return bodyStyle
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

// cell renders one column of a paper, marking titles that have a file or a
// note and prefixing the state with its icon.
func cell(p *paper.Paper, column string, icons theme.IconSet) string {
	value := p.Field(column)
	switch column {
	case "title":
		var marks []string
		if p.Filepath != "" && icons.File != "" {
			marks = append(marks, icons.File)
		}
		if p.Notepath != "" && icons.Note != "" {
			marks = append(marks, icons.Note)
		}
		if len(marks) > 0 {
			value = strings.Join(marks, "") + " " + value
		}
	case "state":
		s, ok := p.LastStatus()
		if !ok {
			break
		}
		icon := icons.Added
		if s.Kind == paper.StatusRead {
			icon = icons.Read
		}
		if icon != "" {
			value = icon + " " + value
		}
	}
	return value
}

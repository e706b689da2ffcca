package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reason/internal/paper"
)

// open shows paper files in the configured viewer.
func open(sh *Shell, in Input) (Output, error) {
	sel, err := selectPapers(sh, in)
	if err != nil {
		return nil, err
	}

	var withFile Selection
	var files []string
	for _, i := range sel {
		if path := sh.State.Papers[i].Filepath; path != "" {
			withFile = append(withFile, i)
			files = append(files, path)
		}
	}
	if skipped := len(sel) - len(withFile); skipped > 0 {
		sh.reportf("%s selected. Skipping %d without file paths.", plural(len(sel), "paper"), skipped)
	}
	if len(files) > 1 {
		if err := sh.Prompter.Confirm(fmt.Sprintf("Open %d papers?", len(files)), true); err != nil {
			return nil, err
		}
	}

	opened := Selection{}
	if len(files) == 0 {
		return opened, nil
	}
	if sh.Config.Output.ViewerBatch {
		if spawn(sh, "viewer", buildCommand(sh.Config.Output.ViewerCommand, files...), false) {
			opened = withFile
		}
		return opened, nil
	}
	for k, file := range files {
		if spawn(sh, "viewer", buildCommand(sh.Config.Output.ViewerCommand, file), false) {
			opened = append(opened, withFile[k])
		}
	}
	return opened, nil
}

// notePath returns the note file of the paper, creating it under noteDir
// when the paper has none yet.
func notePath(p *paper.Paper, noteDir string) (string, error) {
	if p.Notepath != "" {
		if _, err := os.Stat(p.Notepath); err == nil {
			return p.Notepath, nil
		}
	}
	if err := os.MkdirAll(noteDir, 0o755); err != nil {
		return "", err
	}
	path := p.Notepath
	if path == "" {
		path = avoidNameClash(filepath.Join(noteDir, asFilename(p.Title)+".md"))
	}
	header := fmt.Sprintf("# %s\n\n", p.Title)
	if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
		return "", fmt.Errorf("create note for %q: %w", p.Title, err)
	}
	p.Notepath = path
	return path, nil
}

// edit opens paper notes in the configured editor.
func edit(sh *Shell, in Input) (Output, error) {
	sel, err := selectPapers(sh, in)
	if err != nil {
		return nil, err
	}
	notes := make([]string, 0, len(sel))
	for _, i := range sel {
		path, err := notePath(&sh.State.Papers[i], sh.Config.Storage.NoteDir)
		if err != nil {
			return nil, err
		}
		notes = append(notes, path)
	}
	if len(notes) > 1 {
		if err := sh.Prompter.Confirm(fmt.Sprintf("Open notes for %d papers?", len(notes)), true); err != nil {
			return nil, err
		}
	}

	if sh.Config.Output.EditorBatch {
		if len(notes) > 0 {
			spawn(sh, "editor", buildCommand(sh.Config.Output.EditorCommand, notes...), true)
		}
		return None{}, nil
	}
	for _, note := range notes {
		spawn(sh, "editor", buildCommand(sh.Config.Output.EditorCommand, note), false)
	}
	return None{}, nil
}

const bookName = "book.md"

// printBook collects the notes of the selection into one Markdown document
// and opens it with the browser.
func printBook(sh *Shell, in Input) (Output, error) {
	sel, err := selectPapers(sh, in)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("# Reason\n")
	included := Selection{}
	for _, i := range sel {
		p := &sh.State.Papers[i]
		if p.Notepath == "" {
			sh.reportf("Skipping %q: no notes.", p.Title)
			continue
		}
		data, err := os.ReadFile(p.Notepath)
		if err != nil {
			sh.reportf("Skipping %q: %v", p.Title, err)
			continue
		}
		included = append(included, i)
		fmt.Fprintf(&b, "\n## %d. %s\n\n", len(included), p.Title)
		b.WriteString(demoteHeadings(string(data), p.Title))
		b.WriteString("\n")
	}

	if err := os.MkdirAll(sh.Config.Storage.NoteDir, 0o755); err != nil {
		return nil, err
	}
	book := filepath.Join(sh.Config.Storage.NoteDir, bookName)
	if err := os.WriteFile(book, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", book, err)
	}
	if !spawn(sh, "browser", buildCommand(sh.Config.Output.BrowserCommand, book), false) {
		return None{}, nil
	}
	return included, nil
}

// demoteHeadings nests a note under its chapter: the title heading written
// by ed is dropped and the remaining headings move down two levels.
func demoteHeadings(note, title string) string {
	lines := strings.Split(strings.TrimSpace(note), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "# "+title {
		lines = lines[1:]
	}
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(line, "#") {
			lines[i] = "##" + line
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

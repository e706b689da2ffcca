package app

import (
	"errors"
	"fmt"

	"reason/internal/paper"
)

// touch adds a paper described by the arguments.
func touch(sh *Shell, in Input) (Output, error) {
	p, err := paper.FromArgs(in.Args[1:], sh.now())
	if err != nil {
		return nil, err
	}
	if p.Filepath != "" {
		path, err := resolveFile(p.Filepath)
		if err != nil {
			return nil, err
		}
		p.Filepath = path
	}
	sh.State.Papers = append(sh.State.Papers, p)
	logger.Printf("added %q", p.Title)
	return Selection{len(sh.State.Papers) - 1}, nil
}

// set edits the piped papers.
func set(sh *Shell, in Input) (Output, error) {
	if !in.Piped {
		return nil, ErrNoSelection
	}
	e, err := paper.ParseEdit(in.Args[1:])
	if err != nil {
		return nil, err
	}
	if e.Filepath != nil {
		path, err := resolveFile(*e.Filepath)
		if err != nil {
			return nil, err
		}
		e.Filepath = &path
	}
	if e.Title != nil && len(in.Selection) > 1 {
		sh.reportf("Setting the same title on %s.", plural(len(in.Selection), "paper"))
	}
	for _, i := range in.Selection {
		sh.State.Papers[i].Apply(e)
	}
	return in.Selection, nil
}

// remove deletes papers from the library. Files and notes stay on disk.
func remove(sh *Shell, in Input) (Output, error) {
	sel, err := selectPapers(sh, in)
	if err != nil {
		return nil, err
	}
	if len(sel) > 1 {
		if err := sh.Prompter.Confirm(fmt.Sprintf("Remove %d papers?", len(sel)), false); err != nil {
			return nil, err
		}
	}
	n := sh.State.Remove(sel)
	return Message(fmt.Sprintf("Removed %d papers.", n)), nil
}

func count(sh *Shell, in Input) (Output, error) {
	sel, err := selectPapers(sh, in)
	if err != nil {
		return nil, err
	}
	return Message(fmt.Sprintf("%d papers.", len(sel))), nil
}

// markRead appends a read entry to each paper and refreshes the recently
// read directory.
func markRead(sh *Shell, in Input) (Output, error) {
	sel, err := selectPapers(sh, in)
	if err != nil {
		return nil, err
	}
	now := sh.now()
	for _, i := range sel {
		sh.State.Papers[i].MarkRead(now)
	}
	dir := sh.Config.Storage.RecentDir
	if dir != "" {
		if err := rebuildRecentlyReadDirectory(dir, sh.Config.Storage.RecentLimit, sh.State.Papers); err != nil {
			sh.reportf("Recently read directory sync failed: %v", err)
		}
	}
	return sel, nil
}

func exit(sh *Shell, in Input) (Output, error) {
	return None{}, ErrExit
}

// IsExit reports whether err asks the shell to stop.
func IsExit(err error) bool {
	return errors.Is(err, ErrExit)
}

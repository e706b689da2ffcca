package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reason/internal/paper"
)

const defaultRecentLimit = 20

type recentEntry struct {
	path   string
	title  string
	year   string
	readAt time.Time
}

// recentlyRead returns the papers with a file, most recently read first.
func recentlyRead(papers []paper.Paper, limit int) []recentEntry {
	var list []recentEntry
	for i := range papers {
		p := &papers[i]
		at, ok := p.LastRead()
		if !ok || strings.TrimSpace(p.Filepath) == "" {
			continue
		}
		list = append(list, recentEntry{path: p.Filepath, title: p.Title, year: p.Year, readAt: at})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].readAt.After(list[j].readAt)
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

// rebuildRecentlyReadDirectory fills dest with symlinks to the files of the
// most recently read papers. Links that already point at the right file are
// left untouched and stale ones are removed.
func rebuildRecentlyReadDirectory(dest string, limit int, papers []paper.Paper) error {
	if dest == "" {
		return nil
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destAbs, 0o755); err != nil {
		return err
	}

	existing := make(map[string]string)
	dirEntries, err := os.ReadDir(destAbs)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for _, entry := range dirEntries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		linkPath := filepath.Join(destAbs, entry.Name())
		target, err := os.Readlink(linkPath)
		if err != nil {
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(destAbs, target)
		}
		existing[entry.Name()] = filepath.Clean(target)
	}

	desired := make(map[string]string)
	for _, e := range recentlyRead(papers, limit) {
		target, err := filepath.Abs(e.path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(target); err != nil {
			continue
		}
		linkName := recentLinkName(filepath.Base(target), e.title, e.year, e.readAt)
		desired[linkName] = filepath.Clean(target)
	}

	for name, target := range desired {
		if existingTarget, ok := existing[name]; ok && existingTarget == target {
			delete(existing, name)
			continue
		}
		linkPath := filepath.Join(destAbs, name)
		relTarget, err := filepath.Rel(filepath.Dir(linkPath), target)
		if err != nil {
			relTarget = target
		}
		_ = os.Remove(linkPath)
		if err := os.Symlink(relTarget, linkPath); err != nil {
			return fmt.Errorf("creating recently read link for %s: %w", target, err)
		}
	}

	for name := range existing {
		if _, keep := desired[name]; keep {
			continue
		}
		_ = os.Remove(filepath.Join(destAbs, name))
	}
	return nil
}

const recentLinkTimestampLayout = "20060102T150405.000000000Z"

func recentLinkName(baseName, title, year string, readAt time.Time) string {
	base := buildLinkBase(baseName, title, year)
	ts := readAt.UTC().Format(recentLinkTimestampLayout)
	return fmt.Sprintf("%s-%s", ts, base)
}

func sanitizeLinkName(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return strings.NewReplacer("\\", "_", "/", "_", " ", "_").Replace(trimmed)
}

func buildLinkBase(baseName, title, year string) string {
	ext := filepath.Ext(baseName)
	core := sanitizeLinkName(strings.TrimSuffix(baseName, ext))
	if core == "" {
		core = "_"
	}
	title = sanitizeLinkName(title)
	year = sanitizeLinkName(year)
	if title != "" {
		if year == "" {
			year = "-"
		}
		core = fmt.Sprintf("[%s][%s]", year, title)
	}
	return core + ext
}

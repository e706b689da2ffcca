// Package meta persists the paper list. The default backend is a YAML file;
// a state path ending in .db or .sqlite selects the SQLite backend.
package meta

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"reason/internal/logutil"
	"reason/internal/paper"
)

var logger = logutil.GetLogger("[meta] ")

var ErrInvalidRecord = errors.New("invalid record in store")

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}

// Load reads the papers stored at path. A missing file is an empty store.
func Load(path string) ([]paper.Paper, error) {
	if isSQLite(path) {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logger.Printf("no store at %s, starting empty", path)
			return []paper.Paper{}, nil
		}
		s, err := Open(path)
		if err != nil {
			return nil, fmt.Errorf("open store %s: %w", path, err)
		}
		defer s.Close()
		papers, err := s.Papers()
		if err != nil {
			return nil, fmt.Errorf("read store %s: %w", path, err)
		}
		if err := validate(path, papers); err != nil {
			return nil, err
		}
		logger.Printf("loaded %d papers from %s", len(papers), path)
		return papers, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Printf("no store at %s, starting empty", path)
		return []paper.Paper{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}
	var papers []paper.Paper
	if err := yaml.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	if papers == nil {
		papers = []paper.Paper{}
	}
	if err := validate(path, papers); err != nil {
		return nil, err
	}
	logger.Printf("loaded %d papers from %s", len(papers), path)
	return papers, nil
}

// validate rejects records that lack a required field. Commands assume every
// paper has a title, an author, a venue and a year.
func validate(path string, papers []paper.Paper) error {
	for i := range papers {
		if err := papers[i].Validate(); err != nil {
			return fmt.Errorf("%w: %s: paper %d (%q): %w", ErrInvalidRecord, path, i, papers[i].Title, err)
		}
	}
	return nil
}

// Save replaces the contents of the store at path with papers.
func Save(path string, papers []paper.Paper) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if isSQLite(path) {
		s, err := Open(path)
		if err != nil {
			return fmt.Errorf("open store %s: %w", path, err)
		}
		defer s.Close()
		if err := s.Replace(papers); err != nil {
			return fmt.Errorf("write store %s: %w", path, err)
		}
		logger.Printf("saved %d papers to %s", len(papers), path)
		return nil
	}

	data, err := marshal(papers)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write store %s: %w", path, err)
	}
	logger.Printf("saved %d papers to %s", len(papers), path)
	return nil
}

// Dump writes papers as YAML to w. It is the fallback when Save fails.
func Dump(w io.Writer, papers []paper.Paper) error {
	data, err := marshal(papers)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func marshal(papers []paper.Paper) ([]byte, error) {
	if papers == nil {
		papers = []paper.Paper{}
	}
	data, err := yaml.Marshal(papers)
	if err != nil {
		return nil, fmt.Errorf("encode papers: %w", err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

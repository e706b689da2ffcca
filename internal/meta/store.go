package meta

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"reason/internal/paper"
)

// Store is the SQLite backend. Papers are kept in a single table ordered by
// position; list fields are stored newline separated.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS papers (
  position INTEGER PRIMARY KEY,
  title    TEXT NOT NULL,
  nickname TEXT,
  authors  TEXT,
  venue    TEXT,
  year     TEXT,
  filepath TEXT,
  state    TEXT
);
`)
	if err != nil {
		return err
	}
	if err := s.ensureColumn("labels", "TEXT"); err != nil {
		return err
	}
	return s.ensureColumn("notepath", "TEXT")
}

func (s *Store) ensureColumn(name, typ string) error {
	query := fmt.Sprintf(`ALTER TABLE papers ADD COLUMN %s %s`, name, typ)
	_, err := s.db.Exec(query)
	if err != nil {
		errLower := strings.ToLower(err.Error())
		if strings.Contains(errLower, "duplicate column name") {
			return nil
		}
	}
	return err
}

// Papers returns every stored paper in position order.
func (s *Store) Papers() ([]paper.Paper, error) {
	rows, err := s.db.Query(`
SELECT title,
       IFNULL(nickname, ''),
       IFNULL(authors, ''),
       IFNULL(venue, ''),
       IFNULL(year, ''),
       IFNULL(filepath, ''),
       IFNULL(labels, ''),
       IFNULL(notepath, ''),
       IFNULL(state, '')
  FROM papers
 ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]paper.Paper, 0)
	for rows.Next() {
		p, err := scanPaperRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Replace swaps the stored papers for the given list in one transaction.
func (s *Store) Replace(papers []paper.Paper) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM papers`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
INSERT INTO papers (position, title, nickname, authors, venue, year, filepath, labels, notepath, state)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range papers {
		_, err := stmt.Exec(
			i, p.Title, p.Nickname, joinLines(p.Authors), p.Venue, p.Year,
			p.Filepath, joinLines(p.Labels), p.Notepath, encodeStatus(p.Status),
		)
		if err != nil {
			return fmt.Errorf("insert %q: %w", p.Title, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaperRow(scanner rowScanner) (paper.Paper, error) {
	var p paper.Paper
	var authors, labels, state string
	err := scanner.Scan(
		&p.Title,
		&p.Nickname,
		&authors,
		&p.Venue,
		&p.Year,
		&p.Filepath,
		&labels,
		&p.Notepath,
		&state,
	)
	if err != nil {
		return paper.Paper{}, err
	}
	p.Authors = splitLines(authors)
	p.Labels = splitLines(labels)
	p.Status, err = decodeStatus(state)
	if err != nil {
		return paper.Paper{}, fmt.Errorf("paper %q: %w", p.Title, err)
	}
	return p, nil
}

func joinLines(values []string) string {
	return strings.Join(values, "\n")
}

func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// Status entries are stored one per line as "<kind> <RFC 3339 time>".
func encodeStatus(status []paper.Status) string {
	lines := make([]string, len(status))
	for i, st := range status {
		lines[i] = string(st.Kind) + " " + st.At.Format(time.RFC3339Nano)
	}
	return joinLines(lines)
}

func decodeStatus(raw string) ([]paper.Status, error) {
	var status []paper.Status
	for _, line := range splitLines(raw) {
		kind, at, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("malformed state entry %q", line)
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("malformed state time %q: %w", at, err)
		}
		status = append(status, paper.Status{Kind: paper.StatusKind(kind), At: ts})
	}
	return status, nil
}

package paper

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Paper is a single bibliography record.
type Paper struct {
	// Title of the paper, in full. Given as a bare word on the command line.
	Title string `yaml:"title"`
	// Nickname is a short name, usually the name of the system. Keyword: as.
	Nickname string `yaml:"nickname,omitempty"`
	// Authors in order. Keyword: by (comma separated), by1 when filtering.
	Authors []string `yaml:"authors"`
	// Venue excluding the year. Keyword: at, on.
	Venue string `yaml:"venue"`
	// Year of publication. Keyword: in.
	Year string `yaml:"year"`
	// Filepath of the PDF. Keyword: @.
	Filepath string `yaml:"filepath,omitempty"`
	// Labels attached to the paper. Keyword: is (and not, for set).
	Labels []string `yaml:"labels,omitempty"`
	// Notepath is the markdown note managed by ed.
	Notepath string `yaml:"notepath,omitempty"`
	// Status is the management history, oldest first.
	Status []Status `yaml:"state"`
}

type StatusKind string

const (
	StatusAdded StatusKind = "added"
	StatusRead  StatusKind = "read"
)

// Status is one entry of a paper's management history.
type Status struct {
	Kind StatusKind `yaml:"kind"`
	At   time.Time  `yaml:"at"`
}

const statusTimeLayout = "2006-01-02 03:04:05 PM"

func (s Status) String() string {
	switch s.Kind {
	case StatusRead:
		return "READ  " + s.At.Local().Format(statusTimeLayout)
	default:
		return "ADDED " + s.At.Local().Format(statusTimeLayout)
	}
}

// LastStatus returns the most recent status entry.
func (p *Paper) LastStatus() (Status, bool) {
	if len(p.Status) == 0 {
		return Status{}, false
	}
	return p.Status[len(p.Status)-1], true
}

// MarkRead appends a read entry to the status history.
func (p *Paper) MarkRead(at time.Time) {
	p.Status = append(p.Status, Status{Kind: StatusRead, At: at})
}

// LastRead returns the time of the latest read entry.
func (p *Paper) LastRead() (time.Time, bool) {
	for i := len(p.Status) - 1; i >= 0; i-- {
		if p.Status[i].Kind == StatusRead {
			return p.Status[i].At, true
		}
	}
	return time.Time{}, false
}

// FirstAuthor returns the first author. Papers always carry at least one
// author; an empty list is a broken record.
func (p *Paper) FirstAuthor() string {
	return p.Authors[0]
}

func (p *Paper) HasLabel(label string) bool {
	return slices.Contains(p.Labels, label)
}

func (p *Paper) AddLabel(label string) {
	if label == "" || p.HasLabel(label) {
		return
	}
	p.Labels = append(p.Labels, label)
	slices.Sort(p.Labels)
}

func (p *Paper) RemoveLabel(label string) {
	p.Labels = slices.DeleteFunc(p.Labels, func(l string) bool { return l == label })
	if len(p.Labels) == 0 {
		p.Labels = nil
	}
}

// Columns lists the field names a paper table can display.
var Columns = []string{
	"title",
	"nickname",
	"authors",
	"first-author",
	"venue",
	"year",
	"labels",
	"state",
}

func IsColumn(name string) bool {
	return slices.Contains(Columns, name)
}

// Field renders the named column of the paper.
func (p *Paper) Field(column string) string {
	switch column {
	case "title":
		return p.Title
	case "nickname":
		return p.Nickname
	case "authors":
		return strings.Join(p.Authors, ", ")
	case "first-author":
		if len(p.Authors) == 0 {
			return ""
		}
		return p.FirstAuthor()
	case "venue":
		return p.Venue
	case "year":
		return p.Year
	case "labels":
		return strings.Join(p.Labels, ", ")
	case "state":
		if s, ok := p.LastStatus(); ok {
			return s.String()
		}
		return ""
	default:
		return ""
	}
}

var (
	ErrMissingFields = errors.New("required paper fields not given")
	ErrMissingValue  = errors.New("keyword given without a value")
)

// DuplicateFieldError reports a paper field specified more than once.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate paper field keyword specified: '%s'", e.Field)
}

// Edit is a set of field changes parsed from command arguments.
// Unset string fields are left untouched by Apply.
type Edit struct {
	Title    *string
	Nickname *string
	Authors  []string
	Venue    *string
	Year     *string
	Filepath *string
	AddLabel []string
	DelLabel []string
}

var keywordFields = map[string]string{
	"as": "nickname",
	"by": "authors",
	"at": "venue",
	"on": "venue",
	"in": "year",
	"@":  "filepath",
}

// ParseEdit reads paper fields from arguments. Keywords consume the next
// argument; any other argument is the title. "is" and "not" add and remove
// labels and may repeat; every other field may be given once.
func ParseEdit(args []string) (Edit, error) {
	var e Edit
	seen := map[string]bool{}
	take := func(field string) error {
		if seen[field] {
			return &DuplicateFieldError{Field: field}
		}
		seen[field] = true
		return nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "is", "not":
			if i+1 >= len(args) {
				return Edit{}, fmt.Errorf("%w: '%s'", ErrMissingValue, arg)
			}
			i++
			if arg == "is" {
				e.AddLabel = append(e.AddLabel, args[i])
			} else {
				e.DelLabel = append(e.DelLabel, args[i])
			}
		case "as", "by", "at", "on", "in", "@":
			field := keywordFields[arg]
			if err := take(field); err != nil {
				return Edit{}, err
			}
			if i+1 >= len(args) {
				return Edit{}, fmt.Errorf("%w: '%s'", ErrMissingValue, arg)
			}
			i++
			value := args[i]
			switch field {
			case "nickname":
				e.Nickname = &value
			case "authors":
				e.Authors = splitAuthors(value)
			case "venue":
				e.Venue = &value
			case "year":
				e.Year = &value
			case "filepath":
				e.Filepath = &value
			}
		default:
			if err := take("title"); err != nil {
				return Edit{}, err
			}
			title := arg
			e.Title = &title
		}
	}
	return e, nil
}

func splitAuthors(raw string) []string {
	parts := strings.Split(raw, ",")
	authors := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

// Apply writes the edit into the paper.
func (p *Paper) Apply(e Edit) {
	if e.Title != nil {
		p.Title = *e.Title
	}
	if e.Nickname != nil {
		p.Nickname = *e.Nickname
	}
	if len(e.Authors) > 0 {
		p.Authors = slices.Clone(e.Authors)
	}
	if e.Venue != nil {
		p.Venue = *e.Venue
	}
	if e.Year != nil {
		p.Year = *e.Year
	}
	if e.Filepath != nil {
		p.Filepath = *e.Filepath
	}
	for _, l := range e.AddLabel {
		p.AddLabel(l)
	}
	for _, l := range e.DelLabel {
		p.RemoveLabel(l)
	}
}

// Validate reports the required fields the paper is missing.
func (p *Paper) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if len(p.Authors) == 0 {
		missing = append(missing, "authors(by)")
	}
	if strings.TrimSpace(p.Venue) == "" {
		missing = append(missing, "venue(at)")
	}
	if strings.TrimSpace(p.Year) == "" {
		missing = append(missing, "year(in)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}

// FromArgs builds a new paper from touch-style arguments.
func FromArgs(args []string, now time.Time) (Paper, error) {
	e, err := ParseEdit(args)
	if err != nil {
		return Paper{}, err
	}
	if len(e.DelLabel) > 0 {
		return Paper{}, fmt.Errorf("'not' cannot be used when adding a paper")
	}
	var p Paper
	p.Apply(e)
	if err := p.Validate(); err != nil {
		return Paper{}, err
	}
	p.Status = []Status{{Kind: StatusAdded, At: now}}
	return p, nil
}

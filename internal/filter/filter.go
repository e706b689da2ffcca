// Package filter compiles filter arguments into per-field regex constraints
// and keeps the cd-style navigation history of those constraints.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"reason/internal/paper"
)

var ErrFilterBuild = errors.New("failed to build filter from regex")

// Piece is a conjunction of regex constraints keyed by paper field. Every
// regex in a list must hold for the paper to match. A Piece is not modified
// after it is built.
type Piece struct {
	Title       []*regexp.Regexp
	Nickname    []*regexp.Regexp
	Author      []*regexp.Regexp
	FirstAuthor []*regexp.Regexp
	Venue       []*regexp.Regexp
	Year        []*regexp.Regexp
	Is          []*regexp.Regexp
	Not         []*regexp.Regexp
}

func (f *Piece) field(keyword string) *[]*regexp.Regexp {
	switch keyword {
	case "as":
		return &f.Nickname
	case "by":
		return &f.Author
	case "by1":
		return &f.FirstAuthor
	case "at", "on":
		return &f.Venue
	case "in":
		return &f.Year
	case "is":
		return &f.Is
	case "not":
		return &f.Not
	default:
		return nil
	}
}

// Compile builds a Piece from filter arguments. A keyword consumes the next
// argument as its pattern; a keyword with nothing after it is taken as a title
// pattern itself. Any other argument is a title pattern.
func Compile(args []string, caseInsensitive bool) (*Piece, error) {
	f := &Piece{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		place := f.field(arg)
		pattern := arg
		if place != nil && i+1 < len(args) {
			i++
			pattern = args[i]
		} else {
			place = &f.Title
		}
		re, err := compilePattern(pattern, caseInsensitive)
		if err != nil {
			return nil, err
		}
		*place = append(*place, re)
	}
	return f, nil
}

func compilePattern(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	expr := pattern
	if caseInsensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w:\n%v", ErrFilterBuild, err)
	}
	return re, nil
}

// IsEmpty reports whether the piece has no constraints.
func (f *Piece) IsEmpty() bool {
	return len(f.Title) == 0 &&
		len(f.Nickname) == 0 &&
		len(f.Author) == 0 &&
		len(f.FirstAuthor) == 0 &&
		len(f.Venue) == 0 &&
		len(f.Year) == 0 &&
		len(f.Is) == 0 &&
		len(f.Not) == 0
}

// Merge concatenates the constraints of all pieces field by field, in order.
func Merge(pieces ...*Piece) *Piece {
	merged := &Piece{}
	for _, p := range pieces {
		merged.Title = append(merged.Title, p.Title...)
		merged.Nickname = append(merged.Nickname, p.Nickname...)
		merged.Author = append(merged.Author, p.Author...)
		merged.FirstAuthor = append(merged.FirstAuthor, p.FirstAuthor...)
		merged.Venue = append(merged.Venue, p.Venue...)
		merged.Year = append(merged.Year, p.Year...)
		merged.Is = append(merged.Is, p.Is...)
		merged.Not = append(merged.Not, p.Not...)
	}
	return merged
}

// Matches reports whether the paper satisfies every constraint.
func (f *Piece) Matches(p *paper.Paper) bool {
	return matchAll(f.Title, p.Title) &&
		matchAll(f.Nickname, p.Nickname) &&
		matchAll(f.Venue, p.Venue) &&
		matchAll(f.Year, p.Year) &&
		matchEach(f.Author, p.Authors) &&
		matchFirst(f.FirstAuthor, p) &&
		matchEach(f.Is, p.Labels) &&
		matchNone(f.Not, p.Labels)
}

func matchAll(res []*regexp.Regexp, value string) bool {
	for _, re := range res {
		if !re.MatchString(value) {
			return false
		}
	}
	return true
}

// matchEach holds when every regex matches at least one of the values.
func matchEach(res []*regexp.Regexp, values []string) bool {
	for _, re := range res {
		if !slices.ContainsFunc(values, re.MatchString) {
			return false
		}
	}
	return true
}

func matchFirst(res []*regexp.Regexp, p *paper.Paper) bool {
	if len(res) == 0 {
		return true
	}
	return matchAll(res, p.FirstAuthor())
}

// matchNone holds when no value matches any of the regexes.
func matchNone(res []*regexp.Regexp, values []string) bool {
	for _, re := range res {
		if slices.ContainsFunc(values, re.MatchString) {
			return false
		}
	}
	return true
}

func (f *Piece) String() string {
	var segments []string
	describe := func(name string, res []*regexp.Regexp, verb string) {
		if len(res) == 0 {
			return
		}
		quoted := make([]string, len(res))
		for i, re := range res {
			quoted[i] = "'" + re.String() + "'"
		}
		segments = append(segments, fmt.Sprintf("%s %s %s", name, verb, strings.Join(quoted, " and ")))
	}
	describe("title", f.Title, "matches")
	describe("nickname", f.Nickname, "matches")
	describe("author", f.Author, "matches")
	describe("first author", f.FirstAuthor, "matches")
	describe("venue", f.Venue, "matches")
	describe("year", f.Year, "matches")
	describe("label", f.Is, "matches")
	describe("no label", f.Not, "matches")
	if len(segments) == 0 {
		return "no filter"
	}
	return strings.Join(segments, ", ")
}

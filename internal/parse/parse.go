// Package parse splits a command line into pipe-separated argument vectors.
//
// Words are delimited by whitespace but can be grouped with single quotes.
// Inside quotes, whitespace and the pipe character are literal, which lets
// filter arguments carry regex alternations such as 'shadow|tutor'. A literal
// single quote is written as \' both inside and outside quotes; no other
// escape is recognized.
//
// Commands are chained with '|'. A pipe must always sit between two
// commands.
package parse

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrLeadingPipe  = errors.New("command cannot start with a pipe")
	ErrTrailingPipe = errors.New("command cannot end with a dangling pipe")
	ErrDoublePipe   = errors.New("invalid use of pipes")
)

type wordBuffer struct {
	builder strings.Builder
}

func (w *wordBuffer) appendRune(r rune) {
	w.builder.WriteRune(r)
}

func (w *wordBuffer) flushIfNotEmpty(args []string) []string {
	if w.builder.Len() == 0 {
		return args
	}
	args = append(args, w.builder.String())
	w.builder.Reset()
	return args
}

// Line parses a raw command line into one argument vector per pipe segment.
// An empty line yields a single empty vector.
func Line(line string) ([][]string, error) {
	runes := []rune(line)
	pos := 0

	skipSpace := func() {
		for pos < len(runes) && unicode.IsSpace(runes[pos]) {
			pos++
		}
	}

	skipSpace()
	if pos < len(runes) && runes[pos] == '|' {
		return nil, ErrLeadingPipe
	}

	var (
		word       wordBuffer
		current    []string
		parsed     [][]string
		insideQuot bool
	)

	for pos < len(runes) {
		ch := runes[pos]
		pos++

		switch {
		case ch == '\\' && pos < len(runes) && runes[pos] == '\'':
			pos++
			word.appendRune('\'')
		case ch == '\'':
			insideQuot = !insideQuot
		case insideQuot:
			word.appendRune(ch)
		case ch == '|':
			current = word.flushIfNotEmpty(current)
			if len(current) == 0 {
				return nil, ErrDoublePipe
			}
			parsed = append(parsed, current)
			current = nil
		case unicode.IsSpace(ch):
			skipSpace()
			current = word.flushIfNotEmpty(current)
		default:
			word.appendRune(ch)
		}
	}

	current = word.flushIfNotEmpty(current)
	if len(current) == 0 && len(parsed) > 0 {
		return nil, ErrTrailingPipe
	}
	if current == nil {
		current = []string{}
	}
	return append(parsed, current), nil
}

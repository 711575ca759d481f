package moves

import (
	"errors"
	"strings"
)

// Script walks the lines of a move script in order. Lines are separated by
// "\n"; one trailing newline at the end of the text is not an extra line.
type Script struct {
	lines []string
	next  int
	move  Move
	err   error
}

func NewScript(text string) *Script {
	text = strings.TrimSuffix(text, "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return &Script{lines: lines}
}

// Next parses the following line. It returns false at the end of the script
// or on the first malformed line; Err tells the two apart.
func (s *Script) Next() bool {
	if s.err != nil || s.next >= len(s.lines) {
		return false
	}
	line := s.lines[s.next]
	s.next++

	m, err := Parse(line)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Line = s.next
		}
		s.err = err
		return false
	}
	s.move = m
	return true
}

func (s *Script) Move() Move {
	return s.move
}

// Line is the 1-based number of the line last read.
func (s *Script) Line() int {
	return s.next
}

func (s *Script) Err() error {
	return s.err
}

// ParseAll parses every line of text, stopping at the first error.
func ParseAll(text string) ([]Move, error) {
	s := NewScript(text)
	var out []Move
	for s.Next() {
		out = append(out, s.Move())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

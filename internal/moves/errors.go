package moves

import (
	"errors"
	"fmt"
)

// Code identifies the kind of malformed move line.
type Code string

const (
	CodeFormat           Code = "FORMAT"
	CodeInvalidDirection Code = "INVALID_DIRECTION"
)

var (
	ErrFormat           = errors.New("malformed move")
	ErrInvalidDirection = errors.New("invalid direction")
)

// ParseError reports a line that cannot be turned into a Move. Line is
// 1-based and zero when the input did not come from a script.
type ParseError struct {
	Code    Code
	Line    int
	Input   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d %q: %s", e.Code, e.Line, e.Input, e.Message)
	}
	return fmt.Sprintf("[%s] %q: %s", e.Code, e.Input, e.Message)
}

// Unwrap lets callers match on ErrFormat or ErrInvalidDirection.
func (e *ParseError) Unwrap() error {
	switch e.Code {
	case CodeInvalidDirection:
		return ErrInvalidDirection
	default:
		return ErrFormat
	}
}

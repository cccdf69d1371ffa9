package ast

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per ErrorKind. An *Error unwraps to the sentinel of its kind.
var (
	ErrMalformedDirective = errors.New("malformed directive block")
	ErrUnknownDirective   = errors.New("unknown directive")
	ErrMalformedAnchor    = errors.New("malformed heading anchor")
	ErrInvalidFencedCode  = errors.New("invalid fenced code block")
)

// ErrorKind classifies a compilation failure.
type ErrorKind string

const (
	MalformedDirectiveBlock ErrorKind = "MalformedDirectiveBlock"
	UnknownDirective        ErrorKind = "UnknownDirective"
	MalformedHeadingAnchor  ErrorKind = "MalformedHeadingAnchor"
	InvalidFencedCodeBlock  ErrorKind = "InvalidFencedCodeBlock"
)

var sentinels = map[ErrorKind]error{
	MalformedDirectiveBlock: ErrMalformedDirective,
	UnknownDirective:        ErrUnknownDirective,
	MalformedHeadingAnchor:  ErrMalformedAnchor,
	InvalidFencedCodeBlock:  ErrInvalidFencedCode,
}

// Error reports a block that could not be compiled.
// Line and EndLine are 1-based and inclusive.
type Error struct {
	Kind    ErrorKind
	Line    int
	EndLine int
	Name    string // directive name, if any
	Msg     string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	loc := fmt.Sprintf("line %d", e.Line)
	if e.EndLine > e.Line {
		loc = fmt.Sprintf("lines %d-%d", e.Line, e.EndLine)
	}
	s := fmt.Sprintf("%s: %s", loc, e.Kind)
	if e.Name != "" {
		s += fmt.Sprintf(" %q", e.Name)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return sentinels[e.Kind]
}

// IsKind reports whether err, or any error it wraps, is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	s, ok := sentinels[kind]
	return ok && errors.Is(err, s)
}

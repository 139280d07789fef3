package parse

import (
	"errors"
	"fmt"

	"github.com/signadot/qmd-format/go-qmd/token"
)

var (
	// ErrParse is the sentinel every error returned by Parse wraps;
	// callers match the family with errors.Is.
	ErrParse = errors.New("parse error")

	// ErrTooDeep is returned when block nesting exceeds the configured
	// depth limit.
	ErrTooDeep = fmt.Errorf("%w: nesting too deep", ErrParse)
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Warn Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Diagnostic is a positioned message produced during parsing.  Errors
// mean a construct was degraded to literal text or dropped; warnings
// are advisory.
type Diagnostic struct {
	Severity Severity
	Msg      string
	Pos      *token.Pos
}

func (d *Diagnostic) String() string {
	if d.Pos != nil {
		return fmt.Sprintf("%s: %s at %s", d.Severity, d.Msg, d.Pos)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Msg)
}

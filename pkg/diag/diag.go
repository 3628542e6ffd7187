// Package diag carries the diagnostics produced by every stage of the
// pipeline: what went wrong, where, and how bad it is.
package diag

import (
	"errors"
	"fmt"

	"github.com/xplshn/svimport/pkg/token"
)

type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Kind classifies a diagnostic so callers can tell failures apart without
// matching on message text.
type Kind int

const (
	KindNone Kind = iota
	UnsupportedExpression
	UnsupportedOperator
	InvalidCoercion
	UnboundReference
	ParseError
	TypeError
)

func (k Kind) String() string {
	switch k {
	case UnsupportedExpression:
		return "unsupported expression"
	case UnsupportedOperator:
		return "unsupported operator"
	case InvalidCoercion:
		return "invalid coercion"
	case UnboundReference:
		return "unbound reference"
	case ParseError:
		return "parse error"
	case TypeError:
		return "type error"
	default:
		return "none"
	}
}

// Diagnostic is a single report. Error diagnostics double as Go errors so a
// failing stage can both report and return the same value.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Pos      token.Pos
	Message  string
	Flag     string // warning flag name for -W<flag>, empty for errors
}

func (d *Diagnostic) Error() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", d.Pos, d.Message)
	}
	return d.Message
}

// Reporter receives diagnostics as they are produced.
type Reporter interface {
	Report(d *Diagnostic)
}

func Errorf(kind Kind, pos token.Pos, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Severity: Error, Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Warnf(flag string, pos token.Pos, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Severity: Warning, Pos: pos, Message: fmt.Sprintf(format, args...), Flag: flag}
}

// KindOf returns the Kind of the first *Diagnostic in err's chain, or
// KindNone if there is none.
func KindOf(err error) Kind {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Kind
	}
	return KindNone
}

// Discard drops every diagnostic.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(*Diagnostic) {}

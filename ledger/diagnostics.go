package ledger

import (
	"fmt"

	"github.com/robinvdvleuten/beansql/ast"
)

// Severity classifies a diagnostic. Errors indicate the directive could not
// be fully honored; warnings indicate suspicious but recoverable input.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a non-fatal semantic finding recorded during booking. The
// pass never aborts on a diagnostic; everything it finds is accumulated and
// surfaced alongside the booked snapshot.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      ast.Position
}

func (d *Diagnostic) Error() string {
	if d.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// GetPosition returns the source position the diagnostic points at.
func (d *Diagnostic) GetPosition() ast.Position {
	return d.Pos
}

func errorf(pos ast.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: Error, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func warnf(pos ast.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: Warning, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

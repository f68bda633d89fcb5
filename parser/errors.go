package parser

import (
	"fmt"

	"github.com/robinvdvleuten/beansql/ast"
)

// SyntaxError is a recoverable per-line parse failure. The parser records one
// for every malformed directive and resynchronizes at the next line boundary;
// a syntax error never aborts parsing of the rest of the file.
type SyntaxError struct {
	Pos     ast.Position
	Message string
}

func (e *SyntaxError) Error() string {
	location := fmt.Sprintf("%s:%d", e.Pos.Filename, e.Pos.Line)
	if e.Pos.Filename == "" {
		location = fmt.Sprintf("line %d", e.Pos.Line)
	}
	return fmt.Sprintf("%s: %s", location, e.Message)
}

// GetPosition returns the source position, for the error renderer.
func (e *SyntaxError) GetPosition() ast.Position {
	return e.Pos
}

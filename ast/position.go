package ast

import "fmt"

// Position represents a location in a ledger source file.
type Position struct {
	Filename string
	Offset   int // Byte offset
	Line     int // Line number (1-indexed)
	Column   int // Column number (1-indexed)
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsZero returns true if the position is uninitialized.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0 && p.Filename == ""
}

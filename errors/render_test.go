package errors

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/beansql/ast"
	"github.com/robinvdvleuten/beansql/ledger"
	"github.com/robinvdvleuten/beansql/parser"
)

func testPos(line, column int) ast.Position {
	return ast.Position{Filename: "main.bean", Line: line, Column: column}
}

func syntaxError(t *testing.T, source string) *parser.SyntaxError {
	t.Helper()
	_, errs := parser.Parse("main.bean", []byte(source))
	assert.True(t, len(errs) > 0, "expected the source to fail parsing")
	return errs[0]
}

func diagnostic(severity ledger.Severity, message string, pos ast.Position) *ledger.Diagnostic {
	return &ledger.Diagnostic{Severity: severity, Message: message, Pos: pos}
}

func TestRender_SeverityLabels(t *testing.T) {
	r := NewRenderer(nil)

	out := r.Render(diagnostic(ledger.Error, "balance assertion failed", testPos(3, 1)))
	assert.Contains(t, out, "error: balance assertion failed")
	assert.Contains(t, out, "main.bean:3:1")

	out = r.Render(diagnostic(ledger.Warning, "unused pad", testPos(2, 1)))
	assert.Contains(t, out, "warning: unused pad")
}

func TestRender_SyntaxErrorWithoutPositionPrefixInMessage(t *testing.T) {
	r := NewRenderer(nil)
	serr := syntaxError(t, "not a directive\n")

	out := r.Render(serr)
	// The renderer prints the position itself; the message must not repeat it.
	assert.Equal(t, 1, strings.Count(out, "main.bean:"))
}

func TestRender_PlainErrorFallsBack(t *testing.T) {
	r := NewRenderer(nil)
	out := r.Render(stderrors.New("something broke"))
	assert.Equal(t, "error: something broke", out)
}

func TestRender_Excerpt(t *testing.T) {
	source := "2023-01-01 open Assets:Cash\n2023-01-02 open Expenses:Food\nnot a directive\n"
	r := NewRenderer(nil)
	r.AddSource("main.bean", []byte(source))

	out := r.Render(diagnostic(ledger.Error, "boom", testPos(3, 5)))
	lines := strings.Split(out, "\n")

	// Header, blank separator, two context lines, error line, caret.
	assert.Equal(t, 7, len(lines))
	assert.Contains(t, lines[2], "2023-01-01 open Assets:Cash")
	assert.Contains(t, lines[3], "2023-01-02 open Expenses:Food")
	assert.Contains(t, lines[4], "not a directive")
	assert.Equal(t, "       ^", strings.TrimRight(lines[5], " "))
}

func TestRender_NoExcerptForUnknownFile(t *testing.T) {
	r := NewRenderer(nil)
	out := r.Render(diagnostic(ledger.Error, "boom", testPos(3, 5)))
	assert.False(t, strings.Contains(out, "\n\n"))
}

func TestRenderAll_SeparatesWithBlankLines(t *testing.T) {
	r := NewRenderer(nil)
	out := r.RenderAll([]error{
		diagnostic(ledger.Error, "first", testPos(1, 1)),
		diagnostic(ledger.Warning, "second", testPos(2, 1)),
	})

	parts := strings.Split(out, "\n\n")
	assert.Equal(t, 2, len(parts))
	assert.Contains(t, parts[0], "first")
	assert.Contains(t, parts[1], "second")
}

func TestRenderDiagnostics(t *testing.T) {
	r := NewRenderer(nil)
	out := r.RenderDiagnostics([]*ledger.Diagnostic{
		diagnostic(ledger.Warning, "posting to undeclared account Assets:Cash", testPos(4, 3)),
	})
	assert.Contains(t, out, "warning: posting to undeclared account Assets:Cash")
}

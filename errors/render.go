// Package errors renders syntax errors, booking diagnostics and structural
// failures for terminal output in bean-check style: the message first, then
// the offending source lines with a caret under the error column. Rendering
// lives here so the parser and ledger packages stay free of presentation
// concerns.
package errors

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/beansql/ast"
	"github.com/robinvdvleuten/beansql/ledger"
	"github.com/robinvdvleuten/beansql/parser"
)

// Styles groups the lipgloss styles used for diagnostics output.
type Styles struct {
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Position lipgloss.Style
	Source   lipgloss.Style
	Caret    lipgloss.Style
}

// DefaultStyles returns the standard color scheme.
func DefaultStyles() *Styles {
	return &Styles{
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Position: lipgloss.NewStyle().Faint(true),
		Source:   lipgloss.NewStyle(),
		Caret:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// positioned is any error that knows where in the source it happened.
type positioned interface {
	GetPosition() ast.Position
	Error() string
}

// Renderer formats errors, optionally with source excerpts for files it has
// been given the contents of.
type Renderer struct {
	styles  *Styles
	sources map[string][]string
}

// NewRenderer creates a renderer. A nil styles falls back to DefaultStyles.
func NewRenderer(styles *Styles) *Renderer {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Renderer{styles: styles, sources: make(map[string][]string)}
}

// AddSource registers file contents so errors in that file render with a
// source excerpt.
func (r *Renderer) AddSource(filename string, src []byte) {
	r.sources[filename] = strings.Split(string(src), "\n")
}

// Render formats a single error.
func (r *Renderer) Render(err error) string {
	severity := r.styles.Error
	label := "error"
	if d, ok := err.(*ledger.Diagnostic); ok && d.Severity == ledger.Warning {
		severity = r.styles.Warning
		label = "warning"
	}

	p, ok := err.(positioned)
	if !ok {
		return severity.Render(label) + ": " + err.Error()
	}

	pos := p.GetPosition()
	var buf bytes.Buffer
	if !pos.IsZero() {
		buf.WriteString(r.styles.Position.Render(pos.String()))
		buf.WriteString(" ")
	}
	buf.WriteString(severity.Render(label))
	buf.WriteString(": ")
	buf.WriteString(message(err))

	if excerpt := r.excerpt(pos); excerpt != "" {
		buf.WriteString("\n\n")
		buf.WriteString(excerpt)
	}
	return buf.String()
}

// RenderAll formats errors separated by blank lines.
func (r *Renderer) RenderAll(errs []error) string {
	var buf bytes.Buffer
	for i, err := range errs {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(r.Render(err))
	}
	return buf.String()
}

// RenderDiagnostics formats a snapshot's diagnostics.
func (r *Renderer) RenderDiagnostics(diags []*ledger.Diagnostic) string {
	errs := make([]error, len(diags))
	for i, d := range diags {
		errs[i] = d
	}
	return r.RenderAll(errs)
}

// message returns the error text without the position and severity prefixes
// Error() embeds, since the renderer prints those itself.
func message(err error) string {
	switch e := err.(type) {
	case *ledger.Diagnostic:
		return e.Message
	case *parser.SyntaxError:
		return e.Message
	}
	return err.Error()
}

// excerpt renders up to two lines before the error line and a caret under
// the error column.
func (r *Renderer) excerpt(pos ast.Position) string {
	lines, ok := r.sources[pos.Filename]
	if !ok || pos.Line < 1 || pos.Line > len(lines) {
		return ""
	}

	var buf bytes.Buffer
	start := max(pos.Line-2, 1)
	for i := start; i <= pos.Line; i++ {
		buf.WriteString("   ")
		buf.WriteString(r.styles.Source.Render(lines[i-1]))
		buf.WriteByte('\n')
	}
	if pos.Column > 0 {
		buf.WriteString("   ")
		buf.WriteString(strings.Repeat(" ", pos.Column-1))
		buf.WriteString(r.styles.Caret.Render("^"))
		buf.WriteByte('\n')
	}
	return buf.String()
}

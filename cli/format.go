package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	ruleStyle   = lipgloss.NewStyle().Faint(true)
)

// renderTable prints query results as an aligned text table, truncating
// cells when the terminal is too narrow for the widest row.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	fitWidths(widths)

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = headerStyle.Render(pad(h, widths[i]))
	}
	_, _ = fmt.Fprintln(w, strings.Join(cells, "  "))

	for i := range headers {
		cells[i] = ruleStyle.Render(strings.Repeat("-", widths[i]))
	}
	_, _ = fmt.Fprintln(w, strings.Join(cells, "  "))

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = pad(cell, widths[i])
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "  "))
	}
}

func pad(s string, width int) string {
	s = runewidth.Truncate(s, width, "…")
	return s + strings.Repeat(" ", max(0, width-runewidth.StringWidth(s)))
}

// fitWidths shrinks the widest columns until the table fits the terminal,
// never below a readable minimum.
func fitWidths(widths []int) {
	terminalWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || terminalWidth <= 0 {
		return
	}

	const minWidth = 8
	for total(widths) > terminalWidth {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minWidth {
			return
		}
		widths[widest]--
	}
}

func total(widths []int) int {
	sum := 0
	for _, w := range widths {
		sum += w + 2
	}
	return sum - 2
}

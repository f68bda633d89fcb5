package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, []string{"account", "amount"}, [][]string{
		{"Assets:Checking", "-975"},
		{"Expenses:Food", "75"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 4, len(lines))

	// Column width follows the widest cell, "Assets:Checking".
	assert.Equal(t, "account"+strings.Repeat(" ", 8)+"  amount", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "---------------  ------", lines[1])
	assert.Equal(t, "Assets:Checking  -975", strings.TrimRight(lines[2], " "))
	assert.Equal(t, "Expenses:Food    75", strings.TrimRight(lines[3], " "))
}

func TestRenderTable_ShortRows(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, []string{"a", "b"}, [][]string{{"only"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "only", strings.TrimRight(lines[2], " "))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "abc   ", pad("abc", 6))
	assert.Equal(t, "abcd…", pad("abcdef", 5))
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "Assets:Cash", want: "Assets:Cash"},
		{name: "bytes", in: []byte("2023-01-01"), want: "2023-01-01"},
		{name: "int64", in: int64(42), want: "42"},
		{name: "float drops trailing zeros", in: float64(-10.5), want: "-10.5"},
		{name: "float whole number", in: float64(200), want: "200"},
		{name: "bool", in: true, want: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}

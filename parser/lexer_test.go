package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func scanTypes(t *testing.T, source string) []TokenType {
	t.Helper()
	tokens := NewLexer([]byte(source), "test.bean").ScanAll()
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexer_TokenTypes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []TokenType
	}{
		{
			name:   "open directive",
			source: "2023-01-01 open Assets:Cash USD\n",
			want:   []TokenType{DATE, OPEN, ACCOUNT, IDENT, EOL, EOF},
		},
		{
			name:   "transaction header",
			source: "2023-01-02 * \"Cafe\" \"Lunch\" #food ^receipt-1\n",
			want:   []TokenType{DATE, ASTERISK, STRING, STRING, TAG, LINK, EOL, EOF},
		},
		{
			name:   "indented posting",
			source: "2023-01-02 txn\n  Assets:Cash -10.00 USD\n",
			want:   []TokenType{DATE, TXN, EOL, INDENT, ACCOUNT, NUMBER, IDENT, EOL, EOF},
		},
		{
			name:   "cost and price",
			source: "  Assets:Inv 10 HOOL {518.73 USD, 2014-05-01} @ 520.00 USD\n",
			want: []TokenType{
				INDENT, ACCOUNT, NUMBER, IDENT,
				LBRACE, NUMBER, IDENT, COMMA, DATE, RBRACE,
				AT, NUMBER, IDENT, EOL, EOF,
			},
		},
		{
			name:   "total cost braces",
			source: "  Assets:Inv 10 HOOL {{5187.30 USD}}\n",
			want:   []TokenType{INDENT, ACCOUNT, NUMBER, IDENT, LDBRACE, NUMBER, IDENT, RDBRACE, EOL, EOF},
		},
		{
			name:   "total price",
			source: "  Assets:Cash 100 EUR @@ 110.00 USD\n",
			want:   []TokenType{INDENT, ACCOUNT, NUMBER, IDENT, ATAT, NUMBER, IDENT, EOL, EOF},
		},
		{
			name:   "comment only line",
			source: "; a comment\n2023-01-01 close Assets:Cash\n",
			want:   []TokenType{DATE, CLOSE, ACCOUNT, EOL, EOF},
		},
		{
			name:   "inline comment",
			source: "2023-01-01 open Assets:Cash ; opening\n",
			want:   []TokenType{DATE, OPEN, ACCOUNT, EOL, EOF},
		},
		{
			name:   "blank lines skipped",
			source: "\n\n2023-01-01 open Assets:Cash\n\n",
			want:   []TokenType{DATE, OPEN, ACCOUNT, EOL, EOF},
		},
		{
			name:   "option and include",
			source: "option \"booking_method\" \"fifo\"\ninclude \"other.bean\"\n",
			want:   []TokenType{OPTION, STRING, STRING, EOL, INCLUDE, STRING, EOL, EOF},
		},
		{
			name:   "metadata key",
			source: "  invoice: \"INV-1\"\n",
			want:   []TokenType{INDENT, IDENT, COLON, STRING, EOL, EOF},
		},
		{
			name:   "negative number",
			source: "  Assets:Cash -1234.56 USD\n",
			want:   []TokenType{INDENT, ACCOUNT, NUMBER, IDENT, EOL, EOF},
		},
		{
			name:   "missing trailing newline",
			source: "2023-01-01 open Assets:Cash",
			want:   []TokenType{DATE, OPEN, ACCOUNT, EOL, EOF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scanTypes(t, tt.source))
		})
	}
}

func TestLexer_TokenText(t *testing.T) {
	tokens := NewLexer([]byte("2023-01-15 balance Assets:Cash 562.00 USD\n"), "test.bean").ScanAll()

	assert.Equal(t, "2023-01-15", tokens[0].Text)
	assert.Equal(t, "balance", tokens[1].Text)
	assert.Equal(t, "Assets:Cash", tokens[2].Text)
	assert.Equal(t, "562.00", tokens[3].Text)
	assert.Equal(t, "USD", tokens[4].Text)
}

func TestLexer_ThousandsSeparators(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"grouped integer", "  Assets:Cash 1,234 USD\n", "1234"},
		{"grouped with fraction", "  Assets:Cash 1,234.56 USD\n", "1234.56"},
		{"multiple groups", "  Assets:Cash -12,345,678.90 USD\n", "-12345678.90"},
		{"plain number untouched", "  Assets:Cash 1234.56 USD\n", "1234.56"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := NewLexer([]byte(tt.source), "test.bean").ScanAll()
			assert.Equal(t, NUMBER, tokens[2].Type)
			assert.Equal(t, tt.want, tokens[2].Text)
		})
	}
}

func TestLexer_CommaBeforeDateIsNotGrouping(t *testing.T) {
	types := scanTypes(t, "  Assets:Inv 10 HOOL {518,2014-05-01}\n")

	assert.Equal(t, []TokenType{
		INDENT, ACCOUNT, NUMBER, IDENT,
		LBRACE, NUMBER, COMMA, DATE, RBRACE, EOL, EOF,
	}, types)
}

func TestLexer_Positions(t *testing.T) {
	tokens := NewLexer([]byte("2023-01-01 txn\n  Assets:Cash 10 USD\n"), "test.bean").ScanAll()

	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Column)

	// The account token sits on line 2, after the two-space indent.
	var account Token
	for _, tok := range tokens {
		if tok.Type == ACCOUNT {
			account = tok
		}
	}
	assert.Equal(t, 2, account.Line)
	assert.Equal(t, 3, account.Column)
}

func TestLexer_StringEscapes(t *testing.T) {
	tokens := NewLexer([]byte("2023-01-01 event \"name\" \"say \\\"hi\\\"\"\n"), "test.bean").ScanAll()

	var strs []string
	for _, tok := range tokens {
		if tok.Type == STRING {
			strs = append(strs, tok.Text)
		}
	}
	assert.Equal(t, 2, len(strs))
	assert.Equal(t, `"say \"hi\""`, strs[1])
}

func TestLexer_IllegalByte(t *testing.T) {
	types := scanTypes(t, "2023-01-01 open Assets:Cash ~\n")

	found := false
	for _, typ := range types {
		if typ == ILLEGAL {
			found = true
		}
	}
	assert.True(t, found, "expected an ILLEGAL token")
}

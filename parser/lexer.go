package parser

// The lexer is a single-pass byte scanner with no backtracking, modelled as a
// line-oriented tokenizer: it emits an EOL token at every newline and an INDENT
// token when a line begins with whitespace, which is how postings and metadata
// lines are associated with their owning directive. Comments (';' to end of
// line) are skipped entirely.

// Lexer tokenizes ledger source text.
type Lexer struct {
	source   []byte
	filename string
	pos      int
	line     int // 1-indexed
	column   int // 1-indexed
	atBOL    bool
	tokens   []Token
}

// NewLexer creates a lexer for the given source.
func NewLexer(source []byte, filename string) *Lexer {
	// Roughly one token per 6 bytes of typical ledger text.
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
		column:   1,
		atBOL:    true,
		tokens:   make([]Token, 0, len(source)/6+64),
	}
}

// ScanAll lexes the entire source and returns all tokens, ending with EOF.
func (l *Lexer) ScanAll() []Token {
	for l.pos < len(l.source) {
		if l.atBOL {
			l.scanLineStart()
			continue
		}

		ch := l.peek()
		switch {
		case ch == '\n':
			l.emit(EOL, l.line, l.column)
			l.advance()
			l.atBOL = true
		case ch == '\r':
			l.advance()
		case ch == ' ' || ch == '\t':
			l.advance()
		case ch == ';':
			l.skipToEOL()
		default:
			l.tokens = append(l.tokens, l.scanToken())
		}
	}

	// A final line without trailing newline still terminates.
	if n := len(l.tokens); n > 0 && l.tokens[n-1].Type != EOL {
		l.emit(EOL, l.line, l.column)
	}
	l.emit(EOF, l.line, l.column)
	return l.tokens
}

// scanLineStart handles indentation and blank/comment lines at the beginning of
// a physical line.
func (l *Lexer) scanLineStart() {
	start := l.pos
	startLine, startCol := l.line, l.column
	indented := false

	for l.pos < len(l.source) {
		ch := l.peek()
		if ch == ' ' || ch == '\t' {
			indented = true
			l.advance()
			continue
		}
		break
	}

	l.atBOL = false

	if l.pos >= len(l.source) {
		return
	}

	switch l.peek() {
	case '\n':
		// Blank line: no tokens, consume the newline.
		l.advance()
		l.atBOL = true
	case ';':
		l.skipToEOL()
		if l.pos < len(l.source) && l.peek() == '\n' {
			l.advance()
			l.atBOL = true
		}
	default:
		if indented {
			l.tokens = append(l.tokens, Token{INDENT, string(l.source[start:l.pos]), startLine, startCol})
		}
	}
}

// scanToken scans the next non-whitespace token.
func (l *Lexer) scanToken() Token {
	start := l.pos
	startLine, startCol := l.line, l.column
	ch := l.advance()

	switch {
	case ch >= '0' && ch <= '9':
		if l.isDatePattern(start) {
			return l.scanDate(start, startLine, startCol)
		}
		return l.scanNumber(start, startLine, startCol)
	case (ch == '-' || ch == '+') && l.peekIsDigit():
		return l.scanNumber(start, startLine, startCol)
	case ch == '"':
		return l.scanString(start, startLine, startCol)
	case ch == '#':
		return l.scanWord(TAG, start, startLine, startCol)
	case ch == '^':
		return l.scanWord(LINK, start, startLine, startCol)
	case ch >= 'A' && ch <= 'Z' || ch >= 0x80:
		return l.scanAccountOrIdent(start, startLine, startCol)
	case ch >= 'a' && ch <= 'z':
		return l.scanKeywordOrIdent(start, startLine, startCol)
	case ch == '*':
		return Token{ASTERISK, "*", startLine, startCol}
	case ch == '!':
		return Token{EXCLAIM, "!", startLine, startCol}
	case ch == ':':
		return Token{COLON, ":", startLine, startCol}
	case ch == ',':
		return Token{COMMA, ",", startLine, startCol}
	case ch == '{':
		if l.peek() == '{' {
			l.advance()
			return Token{LDBRACE, "{{", startLine, startCol}
		}
		return Token{LBRACE, "{", startLine, startCol}
	case ch == '}':
		if l.peek() == '}' {
			l.advance()
			return Token{RDBRACE, "}}", startLine, startCol}
		}
		return Token{RBRACE, "}", startLine, startCol}
	case ch == '@':
		if l.peek() == '@' {
			l.advance()
			return Token{ATAT, "@@", startLine, startCol}
		}
		return Token{AT, "@", startLine, startCol}
	default:
		return Token{ILLEGAL, string(l.source[start:l.pos]), startLine, startCol}
	}
}

// isDatePattern checks for YYYY-MM-DD starting at the given offset.
func (l *Lexer) isDatePattern(start int) bool {
	if start+10 > len(l.source) {
		return false
	}
	src := l.source[start:]
	for _, i := range [...]int{0, 1, 2, 3, 5, 6, 8, 9} {
		if src[i] < '0' || src[i] > '9' {
			return false
		}
	}
	return src[4] == '-' && src[7] == '-'
}

// scanDate consumes the remaining 9 characters of a YYYY-MM-DD date.
func (l *Lexer) scanDate(start, line, col int) Token {
	for i := 0; i < 9; i++ {
		l.advance()
	}
	return Token{DATE, string(l.source[start:l.pos]), line, col}
}

// scanNumber scans [-+]?[0-9]+(,[0-9]{3})*(\.[0-9]+)?. Thousands separators
// are stripped from the token value so the amount parses as a plain decimal.
func (l *Lexer) scanNumber(start, line, col int) Token {
	grouped := false
	for l.pos < len(l.source) {
		if l.peekIsDigit() {
			l.advance()
			continue
		}
		if l.peek() == ',' && l.isThousandsGroup(l.pos+1) {
			grouped = true
			l.advance()
			continue
		}
		break
	}
	if l.pos+1 < len(l.source) && l.peek() == '.' &&
		l.source[l.pos+1] >= '0' && l.source[l.pos+1] <= '9' {
		l.advance()
		for l.pos < len(l.source) && l.peekIsDigit() {
			l.advance()
		}
	}

	value := l.source[start:l.pos]
	if grouped {
		stripped := make([]byte, 0, len(value))
		for _, ch := range value {
			if ch != ',' {
				stripped = append(stripped, ch)
			}
		}
		value = stripped
	}
	return Token{NUMBER, string(value), line, col}
}

// isThousandsGroup reports whether exactly three digits start at offset. A
// fourth digit means the comma is a list separator, not a grouping mark.
func (l *Lexer) isThousandsGroup(offset int) bool {
	if offset+3 > len(l.source) {
		return false
	}
	for i := offset; i < offset+3; i++ {
		if l.source[i] < '0' || l.source[i] > '9' {
			return false
		}
	}
	return offset+3 >= len(l.source) || l.source[offset+3] < '0' || l.source[offset+3] > '9'
}

// scanString scans a quoted string; strings never span lines.
func (l *Lexer) scanString(start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.peek()
		if ch == '"' {
			l.advance()
			break
		}
		if ch == '\n' {
			break
		}
		if ch == '\\' && l.pos+1 < len(l.source) {
			l.advance()
		}
		l.advance()
	}
	return Token{STRING, string(l.source[start:l.pos]), line, col}
}

// scanWord scans the [A-Za-z0-9_-]+ body shared by tags and links.
func (l *Lexer) scanWord(typ TokenType, start, line, col int) Token {
	for l.pos < len(l.source) {
		ch := l.peek()
		if !isWordByte(ch) {
			break
		}
		l.advance()
	}
	return Token{typ, string(l.source[start:l.pos]), line, col}
}

// scanAccountOrIdent scans names starting with an uppercase or non-ASCII byte.
// Names containing a colon are accounts (Assets:Bank:Checking); the rest are
// identifiers (USD, TRUE). Multi-byte UTF-8 sequences are accepted so account
// segments may carry non-English letters.
func (l *Lexer) scanAccountOrIdent(start, line, col int) Token {
	hasColon := false
	for l.pos < len(l.source) {
		ch := l.peek()
		if !isWordByte(ch) && ch != ':' && ch < 0x80 {
			break
		}
		if ch == ':' {
			hasColon = true
		}
		l.advance()
	}
	text := string(l.source[start:l.pos])
	if hasColon {
		return Token{ACCOUNT, text, line, col}
	}
	return Token{IDENT, text, line, col}
}

// scanKeywordOrIdent scans a lowercase-led word and classifies keywords.
func (l *Lexer) scanKeywordOrIdent(start, line, col int) Token {
	for l.pos < len(l.source) {
		if !isWordByte(l.peek()) {
			break
		}
		l.advance()
	}
	text := string(l.source[start:l.pos])
	return Token{keywordType(text), text, line, col}
}

// keywordType returns the keyword token type, or IDENT for anything else.
func keywordType(word string) TokenType {
	switch word {
	case "txn":
		return TXN
	case "open":
		return OPEN
	case "close":
		return CLOSE
	case "commodity":
		return COMMODITY
	case "balance":
		return BALANCE
	case "pad":
		return PAD
	case "note":
		return NOTE
	case "document":
		return DOCUMENT
	case "price":
		return PRICE
	case "event":
		return EVENT
	case "query":
		return QUERY
	case "custom":
		return CUSTOM
	case "option":
		return OPTION
	case "include":
		return INCLUDE
	default:
		return IDENT
	}
}

func isWordByte(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' ||
		ch >= '0' && ch <= '9' || ch == '_' || ch == '-'
}

func (l *Lexer) emit(typ TokenType, line, col int) {
	l.tokens = append(l.tokens, Token{typ, "", line, col})
}

func (l *Lexer) skipToEOL() {
	for l.pos < len(l.source) && l.peek() != '\n' {
		l.pos++
		l.column++
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekIsDigit() bool {
	ch := l.peek()
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

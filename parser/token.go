package parser

// TokenType identifies the kind of token scanned from the input.
type TokenType uint8

const (
	// Special tokens
	EOF TokenType = iota
	EOL            // end of logical line
	INDENT         // leading whitespace on a continuation line
	ILLEGAL

	// Keywords
	TXN       // txn
	OPEN      // open
	CLOSE     // close
	COMMODITY // commodity
	BALANCE   // balance
	PAD       // pad
	NOTE      // note
	DOCUMENT  // document
	PRICE     // price
	EVENT     // event
	QUERY     // query
	CUSTOM    // custom
	OPTION    // option
	INCLUDE   // include

	// Literals
	DATE    // YYYY-MM-DD
	ACCOUNT // Assets:Bank:Checking
	STRING  // "quoted string"
	NUMBER  // 123.45 or -123.45
	IDENT   // USD, TRUE, FALSE, metadata keys
	TAG     // #tag
	LINK    // ^link

	// Symbols
	ASTERISK // *
	EXCLAIM  // !
	COLON    // :
	COMMA    // ,
	AT       // @
	ATAT     // @@
	LBRACE   // {
	RBRACE   // }
	LDBRACE  // {{
	RDBRACE  // }}
)

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	EOL:     "EOL",
	INDENT:  "INDENT",
	ILLEGAL: "ILLEGAL",

	TXN:       "txn",
	OPEN:      "open",
	CLOSE:     "close",
	COMMODITY: "commodity",
	BALANCE:   "balance",
	PAD:       "pad",
	NOTE:      "note",
	DOCUMENT:  "document",
	PRICE:     "price",
	EVENT:     "event",
	QUERY:     "query",
	CUSTOM:    "custom",
	OPTION:    "option",
	INCLUDE:   "include",

	DATE:    "DATE",
	ACCOUNT: "ACCOUNT",
	STRING:  "STRING",
	NUMBER:  "NUMBER",
	IDENT:   "IDENT",
	TAG:     "TAG",
	LINK:    "LINK",

	ASTERISK: "*",
	EXCLAIM:  "!",
	COLON:    ":",
	COMMA:    ",",
	AT:       "@",
	ATAT:     "@@",
	LBRACE:   "{",
	RBRACE:   "}",
	LDBRACE:  "{{",
	RDBRACE:  "}}",
}

// String returns the display name of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is a single lexeme with its source location. Text is the raw source
// slice; for STRING tokens it includes the surrounding quotes.
type Token struct {
	Type   TokenType
	Text   string
	Line   int
	Column int
}

// IsKeyword reports whether the token is a directive keyword.
func (t Token) IsKeyword() bool {
	return t.Type >= TXN && t.Type <= INCLUDE
}

// Package parser turns ledger source text into the ast directive model.
//
// Parsing is line-oriented and fault tolerant: every logical line is one
// directive (indented continuation lines carry postings and metadata), and a
// malformed line produces a SyntaxError without aborting the rest of the file.
// The parser resynchronizes at the next non-indented line.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
)

// Parser consumes a token stream and produces directives plus syntax errors.
type Parser struct {
	filename string
	tokens   []Token
	pos      int
	errs     []*SyntaxError
}

// Parse parses ledger source, returning the file and all recoverable syntax
// errors. The returned file is always non-nil; callers decide how to surface
// the errors.
func Parse(filename string, src []byte) (*ast.File, []*SyntaxError) {
	return ParseContext(context.Background(), filename, src)
}

// ParseContext is Parse with cancellation between directives.
func ParseContext(ctx context.Context, filename string, src []byte) (*ast.File, []*SyntaxError) {
	p := &Parser{
		filename: filename,
		tokens:   NewLexer(src, filename).ScanAll(),
	}

	file := &ast.File{}

	for !p.at(EOF) {
		select {
		case <-ctx.Done():
			return file, p.errs
		default:
		}

		switch {
		case p.at(EOL):
			p.next()
		case p.at(INDENT):
			p.errorf(p.peek(), "unexpected indentation outside a directive")
			p.sync()
		case p.at(OPTION):
			if opt := p.parseOption(); opt != nil {
				file.Options = append(file.Options, opt)
			}
		case p.at(INCLUDE):
			if inc := p.parseInclude(); inc != nil {
				file.Includes = append(file.Includes, inc)
			}
		case p.at(DATE):
			if d := p.parseDirective(); d != nil {
				file.Directives = append(file.Directives, d)
			}
		default:
			p.errorf(p.peek(), "expected a dated directive, option or include, found %q", p.peek().Text)
			p.sync()
		}
	}

	return file, p.errs
}

// Errors returns the syntax errors collected so far.
func (p *Parser) Errors() []*SyntaxError { return p.errs }

// parseOption parses: option "name" "value"
func (p *Parser) parseOption() *ast.Option {
	tok := p.next() // option
	name, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	value, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	return &ast.Option{Pos: p.position(tok), Name: name, Value: value}
}

// parseInclude parses: include "path"
func (p *Parser) parseInclude() *ast.Include {
	tok := p.next() // include
	path, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	return &ast.Include{Pos: p.position(tok), Filename: path}
}

// parseDirective dispatches on the keyword (or transaction flag) following the
// date. On any failure it records a SyntaxError and resynchronizes.
func (p *Parser) parseDirective() ast.Directive {
	dateTok := p.next()
	date, err := ast.NewDate(dateTok.Text)
	if err != nil {
		p.errorf(dateTok, "%s", err.Error())
		p.sync()
		return nil
	}
	pos := p.position(dateTok)

	tok := p.peek()
	switch tok.Type {
	case OPEN:
		return p.parseOpen(pos, date)
	case CLOSE:
		return p.parseClose(pos, date)
	case COMMODITY:
		return p.parseCommodity(pos, date)
	case BALANCE:
		return p.parseBalance(pos, date)
	case PAD:
		return p.parsePad(pos, date)
	case NOTE:
		return p.parseNote(pos, date)
	case DOCUMENT:
		return p.parseDocument(pos, date)
	case PRICE:
		return p.parsePrice(pos, date)
	case EVENT:
		return p.parseEvent(pos, date)
	case QUERY:
		return p.parseQuery(pos, date)
	case CUSTOM:
		return p.parseCustom(pos, date)
	case TXN, ASTERISK, EXCLAIM:
		return p.parseTransaction(pos, date)
	case IDENT:
		// Single uppercase letters act as transaction flags ('P' for padding).
		if len(tok.Text) == 1 && tok.Text[0] >= 'A' && tok.Text[0] <= 'Z' {
			return p.parseTransaction(pos, date)
		}
		p.errorf(tok, "unknown directive %q", tok.Text)
		p.sync()
		return nil
	default:
		p.errorf(tok, "expected a directive keyword after date, found %q", tok.Text)
		p.sync()
		return nil
	}
}

func (p *Parser) parseOpen(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // open
	account, ok := p.expectAccount()
	if !ok {
		p.sync()
		return nil
	}

	open := &ast.Open{Pos: pos, Date: date, Account: account}

	for p.at(IDENT) {
		open.ConstraintCurrencies = append(open.ConstraintCurrencies, p.next().Text)
		if p.at(COMMA) {
			p.next()
		}
	}
	if p.at(STRING) {
		open.BookingMethod = unquote(p.next().Text)
	}
	if !p.expectEOL() {
		return nil
	}
	p.attachMetadata(open)
	return open
}

func (p *Parser) parseClose(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // close
	account, ok := p.expectAccount()
	if !ok {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	c := &ast.Close{Pos: pos, Date: date, Account: account}
	p.attachMetadata(c)
	return c
}

func (p *Parser) parseCommodity(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // commodity
	if !p.at(IDENT) {
		p.errorf(p.peek(), "expected currency after commodity, found %q", p.peek().Text)
		p.sync()
		return nil
	}
	c := &ast.Commodity{Pos: pos, Date: date, Currency: p.next().Text}
	if !p.expectEOL() {
		return nil
	}
	p.attachMetadata(c)
	return c
}

func (p *Parser) parseBalance(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // balance
	account, ok := p.expectAccount()
	if !ok {
		p.sync()
		return nil
	}
	amount := p.parseAmount()
	if amount == nil {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	b := &ast.Balance{Pos: pos, Date: date, Account: account, Amount: amount}
	p.attachMetadata(b)
	return b
}

func (p *Parser) parsePad(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // pad
	account, ok := p.expectAccount()
	if !ok {
		p.sync()
		return nil
	}
	padAccount, ok := p.expectAccount()
	if !ok {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	d := &ast.Pad{Pos: pos, Date: date, Account: account, AccountPad: padAccount}
	p.attachMetadata(d)
	return d
}

func (p *Parser) parseNote(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // note
	account, ok := p.expectAccount()
	if !ok {
		p.sync()
		return nil
	}
	description, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	n := &ast.Note{Pos: pos, Date: date, Account: account, Description: description}
	p.attachMetadata(n)
	return n
}

func (p *Parser) parseDocument(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // document
	account, ok := p.expectAccount()
	if !ok {
		p.sync()
		return nil
	}
	path, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	d := &ast.Document{Pos: pos, Date: date, Account: account, Path: path}
	p.attachMetadata(d)
	return d
}

func (p *Parser) parsePrice(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // price
	if !p.at(IDENT) {
		p.errorf(p.peek(), "expected commodity after price, found %q", p.peek().Text)
		p.sync()
		return nil
	}
	commodity := p.next().Text
	amount := p.parseAmount()
	if amount == nil {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	d := &ast.Price{Pos: pos, Date: date, Commodity: commodity, Amount: amount}
	p.attachMetadata(d)
	return d
}

func (p *Parser) parseEvent(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // event
	name, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	value, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	e := &ast.Event{Pos: pos, Date: date, Name: name, Value: value}
	p.attachMetadata(e)
	return e
}

func (p *Parser) parseQuery(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // query
	name, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	sql, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}
	if !p.expectEOL() {
		return nil
	}
	q := &ast.Query{Pos: pos, Date: date, Name: name, SQL: sql}
	p.attachMetadata(q)
	return q
}

func (p *Parser) parseCustom(pos ast.Position, date *ast.Date) ast.Directive {
	p.next() // custom
	typ, ok := p.expectString()
	if !ok {
		p.sync()
		return nil
	}

	c := &ast.Custom{Pos: pos, Date: date, Type: typ}
	for !p.at(EOL) && !p.at(EOF) {
		v := p.parseCustomValue()
		if v == nil {
			p.sync()
			return nil
		}
		c.Values = append(c.Values, v)
	}
	if !p.expectEOL() {
		return nil
	}
	p.attachMetadata(c)
	return c
}

// parseCustomValue parses one value of a custom directive: a string, boolean,
// amount (number followed by currency), or bare number.
func (p *Parser) parseCustomValue() *ast.CustomValue {
	tok := p.peek()
	switch tok.Type {
	case STRING:
		s := unquote(p.next().Text)
		return &ast.CustomValue{String: &s}
	case IDENT:
		switch tok.Text {
		case "TRUE", "FALSE":
			p.next()
			b := tok.Text == "TRUE"
			return &ast.CustomValue{Boolean: &b}
		default:
			s := p.next().Text
			return &ast.CustomValue{String: &s}
		}
	case NUMBER:
		num := p.next().Text
		if _, err := decimal.NewFromString(num); err != nil {
			p.errorf(tok, "invalid number %q", num)
			return nil
		}
		if p.at(IDENT) {
			return &ast.CustomValue{Amount: &ast.Amount{Value: num, Currency: p.next().Text}}
		}
		return &ast.CustomValue{Number: &num}
	default:
		p.errorf(tok, "unexpected value %q in custom directive", tok.Text)
		return nil
	}
}

// parseTransaction parses the header line, then the indented posting and
// metadata lines. Metadata lines indented deeper than the posting they follow
// attach to that posting; otherwise they attach to the transaction.
func (p *Parser) parseTransaction(pos ast.Position, date *ast.Date) ast.Directive {
	flagTok := p.next()
	flag := flagTok.Text
	if flagTok.Type == TXN {
		flag = "*"
	}

	txn := &ast.Transaction{Pos: pos, Date: date, Flag: flag}

	// Optional payee and narration strings. A single string is the narration;
	// two strings are payee then narration.
	if p.at(STRING) {
		first := unquote(p.next().Text)
		if p.at(STRING) {
			txn.Payee = first
			txn.Narration = unquote(p.next().Text)
		} else {
			txn.Narration = first
		}
	}

	for p.at(TAG) || p.at(LINK) {
		tok := p.next()
		if tok.Type == TAG {
			txn.Tags = append(txn.Tags, ast.Tag(tok.Text[1:]))
		} else {
			txn.Links = append(txn.Links, ast.Link(tok.Text[1:]))
		}
	}
	if !p.expectEOL() {
		return txn
	}

	postingIndent := -1
	for p.at(INDENT) {
		indent := len(p.peek().Text)
		next := p.peekAt(1)

		switch {
		case next.Type == IDENT && p.peekAt(2).Type == COLON:
			p.next() // INDENT
			meta := p.parseMetadataLine()
			if meta == nil {
				continue
			}
			if len(txn.Postings) > 0 && postingIndent >= 0 && indent > postingIndent {
				txn.Postings[len(txn.Postings)-1].AddMetadata(meta)
			} else {
				txn.AddMetadata(meta)
			}
		case next.Type == ACCOUNT || next.Type == ASTERISK || next.Type == EXCLAIM:
			p.next() // INDENT
			posting := p.parsePosting()
			if posting == nil {
				continue
			}
			postingIndent = indent
			txn.Postings = append(txn.Postings, posting)
		default:
			p.errorf(next, "expected posting or metadata, found %q", next.Text)
			p.syncLine()
		}
	}

	return txn
}

// parsePosting parses one posting line after its INDENT token.
func (p *Parser) parsePosting() *ast.Posting {
	posting := &ast.Posting{Pos: p.position(p.peek())}

	if p.at(ASTERISK) || p.at(EXCLAIM) {
		posting.Flag = p.next().Text
	}

	account, ok := p.expectAccount()
	if !ok {
		p.syncLine()
		return nil
	}
	posting.Account = account

	if p.at(NUMBER) {
		posting.Amount = p.parseAmount()
		if posting.Amount == nil {
			p.syncLine()
			return nil
		}

		if p.at(LBRACE) || p.at(LDBRACE) {
			posting.Cost = p.parseCost()
			if posting.Cost == nil {
				p.syncLine()
				return nil
			}
		}

		if p.at(AT) || p.at(ATAT) {
			posting.PriceTotal = p.next().Type == ATAT
			posting.Price = p.parseAmount()
			if posting.Price == nil {
				p.syncLine()
				return nil
			}
		}
	}

	if !p.expectEOL() {
		return nil
	}
	return posting
}

// parseCost parses {cost}, {cost, date}, {cost, "label"}, {}, {*} and the
// total-cost form {{cost}}.
func (p *Parser) parseCost() *ast.Cost {
	open := p.next()
	cost := &ast.Cost{IsTotal: open.Type == LDBRACE}
	closing := RBRACE
	if cost.IsTotal {
		closing = RDBRACE
	}

	if p.at(ASTERISK) {
		p.next()
		cost.IsMerge = true
	} else if p.at(NUMBER) {
		cost.Amount = p.parseAmount()
		if cost.Amount == nil {
			return nil
		}
	}

	for p.at(COMMA) {
		p.next()
		switch {
		case p.at(DATE):
			tok := p.next()
			date, err := ast.NewDate(tok.Text)
			if err != nil {
				p.errorf(tok, "%s", err.Error())
				return nil
			}
			cost.Date = date
		case p.at(STRING):
			cost.Label = unquote(p.next().Text)
		default:
			p.errorf(p.peek(), "expected date or label in cost, found %q", p.peek().Text)
			return nil
		}
	}

	if !p.at(closing) {
		p.errorf(p.peek(), "expected %q to close cost, found %q", closing.String(), p.peek().Text)
		return nil
	}
	p.next()
	return cost
}

// parseMetadataLine parses: key: rest-of-line
func (p *Parser) parseMetadataLine() *ast.Metadata {
	key := p.next().Text
	p.next() // colon

	var parts []string
	for !p.at(EOL) && !p.at(EOF) {
		tok := p.next()
		if tok.Type == STRING {
			parts = append(parts, unquote(tok.Text))
		} else {
			parts = append(parts, tok.Text)
		}
	}
	if p.at(EOL) {
		p.next()
	}
	return &ast.Metadata{Key: key, Value: strings.Join(parts, " ")}
}

// parseAmount parses NUMBER IDENT and validates the number is decimal.
func (p *Parser) parseAmount() *ast.Amount {
	if !p.at(NUMBER) {
		p.errorf(p.peek(), "expected amount, found %q", p.peek().Text)
		return nil
	}
	numTok := p.next()
	if _, err := decimal.NewFromString(numTok.Text); err != nil {
		p.errorf(numTok, "invalid amount %q", numTok.Text)
		return nil
	}
	if !p.at(IDENT) {
		p.errorf(p.peek(), "expected currency after amount, found %q", p.peek().Text)
		return nil
	}
	return &ast.Amount{Value: numTok.Text, Currency: p.next().Text}
}

// attachMetadata consumes indented metadata lines following a directive.
func (p *Parser) attachMetadata(d ast.WithMetadata) {
	for p.at(INDENT) {
		next := p.peekAt(1)
		if next.Type != IDENT || p.peekAt(2).Type != COLON {
			p.errorf(next, "expected metadata line, found %q", next.Text)
			p.syncLine()
			continue
		}
		p.next() // INDENT
		if meta := p.parseMetadataLine(); meta != nil {
			d.AddMetadata(meta)
		}
	}
}

// Token stream helpers.

func (p *Parser) peek() Token { return p.tokens[p.pos] }

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) at(typ TokenType) bool { return p.peek().Type == typ }

func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expectAccount() (ast.Account, bool) {
	if !p.at(ACCOUNT) {
		p.errorf(p.peek(), "expected account, found %q", p.peek().Text)
		return "", false
	}
	tok := p.next()
	account, err := ast.ParseAccount(tok.Text)
	if err != nil {
		p.errorf(tok, "%s", err.Error())
		return "", false
	}
	return account, true
}

func (p *Parser) expectString() (string, bool) {
	if !p.at(STRING) {
		p.errorf(p.peek(), "expected string, found %q", p.peek().Text)
		return "", false
	}
	return unquote(p.next().Text), true
}

// expectEOL consumes the end of the logical line, reporting trailing garbage.
func (p *Parser) expectEOL() bool {
	if p.at(EOF) {
		return true
	}
	if !p.at(EOL) {
		p.errorf(p.peek(), "unexpected %q at end of line", p.peek().Text)
		p.sync()
		return false
	}
	p.next()
	return true
}

// sync skips to the start of the next directive: past the current line and any
// indented continuation lines that belong to the failed directive.
func (p *Parser) sync() {
	p.syncLine()
	for p.at(INDENT) {
		p.syncLine()
	}
}

// syncLine skips past the next EOL.
func (p *Parser) syncLine() {
	for !p.at(EOL) && !p.at(EOF) {
		p.next()
	}
	if p.at(EOL) {
		p.next()
	}
}

func (p *Parser) errorf(tok Token, format string, args ...interface{}) {
	p.errs = append(p.errs, &SyntaxError{
		Pos:     p.position(tok),
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *Parser) position(tok Token) ast.Position {
	return ast.Position{Filename: p.filename, Line: tok.Line, Column: tok.Column}
}

// unquote strips the surrounding quotes from a STRING token and resolves the
// escape sequences the lexer accepted.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	} else if len(s) >= 1 && s[0] == '"' {
		// Unterminated string: the lexer stopped at end of line.
		s = s[1:]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

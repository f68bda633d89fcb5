// Package ledger books a parsed directive stream into an immutable snapshot:
// per-account inventories with lot tracking, balance assertions, pad
// synthesis and a price series. Semantic problems never abort the pass; they
// accumulate as diagnostics on the snapshot.
package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
	"github.com/robinvdvleuten/beansql/telemetry"
)

// Book runs one booking pass over the file and returns the resulting
// snapshot. The input file is not modified; cfg may be nil for defaults.
func Book(ctx context.Context, file *ast.File, cfg *Config) *Snapshot {
	span := telemetry.FromContext(ctx).Start("Book ledger")
	defer span.End()

	if cfg == nil {
		cfg = DefaultConfig()
	}
	local := *cfg

	b := &booker{
		cfg:         &local,
		accounts:    make(map[ast.Account]*Account),
		commodities: make(map[string]ast.Position),
		pads:        make(map[ast.Account]*pendingPad),
		prices:      newPriceSeries(),
	}
	b.diags = append(b.diags, b.cfg.ApplyOptions(file.Options)...)

	sortSpan := span.Child("Sort directives")
	directives := slices.Clone(file.Directives)
	ast.SortDirectives(directives)
	sortSpan.End()

	applySpan := span.Child("Apply directives")
	for _, dir := range directives {
		b.apply(dir)
	}
	applySpan.End()

	for _, pad := range b.padOrder {
		if !pad.used && !pad.superseded {
			b.warnf(pad.directive.Pos, "unused pad for %s: no failing balance assertion follows it", pad.directive.Account)
		}
	}

	return b.snapshot()
}

// pendingPad is a pad directive waiting for the failing balance assertion it
// will repair. A pad satisfies at most one assertion; a later pad for the
// same account supersedes it.
type pendingPad struct {
	directive  *ast.Pad
	used       bool
	superseded bool
}

type bookedTxn struct {
	txn      *Transaction
	postings []*Posting
}

type booker struct {
	cfg         *Config
	accounts    map[ast.Account]*Account
	commodities map[string]ast.Position
	pads        map[ast.Account]*pendingPad
	padOrder    []*pendingPad
	prices      *priceSeries
	txns        []*bookedTxn
	events      []*EventRow
	diags       []*Diagnostic
}

func (b *booker) errorf(pos ast.Position, format string, args ...any) {
	b.diags = append(b.diags, errorf(pos, format, args...))
}

func (b *booker) warnf(pos ast.Position, format string, args ...any) {
	b.diags = append(b.diags, warnf(pos, format, args...))
}

func (b *booker) apply(dir ast.Directive) {
	switch d := dir.(type) {
	case *ast.Open:
		b.open(d)
	case *ast.Close:
		b.close(d)
	case *ast.Commodity:
		b.commodity(d)
	case *ast.Transaction:
		b.transaction(d)
	case *ast.Balance:
		b.balance(d)
	case *ast.Pad:
		b.pad(d)
	case *ast.Price:
		b.price(d)
	case *ast.Event:
		b.events = append(b.events, &EventRow{Date: *d.Date, Name: d.Name, Value: d.Value, Pos: d.Pos})
	case *ast.Note:
		b.requireAccount(d.Account, d.Pos)
	case *ast.Document:
		b.requireAccount(d.Account, d.Pos)
	}
	// Query and Custom directives carry no booking semantics.
}

func (b *booker) open(o *ast.Open) {
	method := b.cfg.BookingMethod
	if o.BookingMethod != "" {
		m, err := ParseBookingMethod(o.BookingMethod)
		if err != nil {
			b.errorf(o.Pos, "%s", err)
		} else {
			method = m
		}
	}

	if existing, ok := b.accounts[o.Account]; ok {
		if existing.Declared {
			b.errorf(o.Pos, "account %s is already open since %s", o.Account, &existing.OpenDate)
			return
		}
		// Upgrade an account first seen through a posting.
		existing.Declared = true
		existing.OpenDate = *o.Date
		existing.Currencies = o.ConstraintCurrencies
		existing.Booking = method
		return
	}

	b.accounts[o.Account] = &Account{
		Name:       o.Account,
		OpenDate:   *o.Date,
		Currencies: o.ConstraintCurrencies,
		Booking:    method,
		Declared:   true,
		Inventory:  NewInventory(),
	}
}

func (b *booker) close(c *ast.Close) {
	acct, ok := b.accounts[c.Account]
	if !ok || !acct.Declared {
		b.errorf(c.Pos, "cannot close unknown account %s", c.Account)
		return
	}
	if acct.CloseDate != nil {
		b.errorf(c.Pos, "account %s is already closed since %s", c.Account, acct.CloseDate)
		return
	}
	if c.Date.Time.Before(acct.OpenDate.Time) {
		b.errorf(c.Pos, "account %s closes before it opens", c.Account)
		return
	}
	closed := *c.Date
	acct.CloseDate = &closed
}

func (b *booker) commodity(c *ast.Commodity) {
	if prev, ok := b.commodities[c.Currency]; ok {
		b.warnf(c.Pos, "commodity %s already declared at %s", c.Currency, prev)
		return
	}
	b.commodities[c.Currency] = c.Pos
}

func (b *booker) pad(p *ast.Pad) {
	if prev, ok := b.pads[p.Account]; ok && !prev.used {
		prev.superseded = true
		b.warnf(prev.directive.Pos, "unused pad for %s superseded by pad at %s", p.Account, p.Pos)
	}
	pending := &pendingPad{directive: p}
	b.pads[p.Account] = pending
	b.padOrder = append(b.padOrder, pending)
}

func (b *booker) price(p *ast.Price) {
	rate, err := decimal.NewFromString(p.Amount.Value)
	if err != nil {
		b.errorf(p.Pos, "invalid price rate %q", p.Amount.Value)
		return
	}
	b.prices.add(&PricePoint{
		Date:  *p.Date,
		Base:  p.Commodity,
		Quote: p.Amount.Currency,
		Rate:  rate,
		Pos:   p.Pos,
	})
}

// requireAccount validates an account reference on a non-posting directive.
func (b *booker) requireAccount(name ast.Account, pos ast.Position) {
	if acct, ok := b.accounts[name]; !ok || !acct.Declared {
		b.warnf(pos, "reference to unknown account %s", name)
	}
}

// postingAccount resolves the account for a posting, creating an undeclared
// placeholder when needed so balances still accrue.
func (b *booker) postingAccount(name ast.Account, date *ast.Date, pos ast.Position) *Account {
	acct, ok := b.accounts[name]
	if !ok {
		if b.cfg.StrictAccounts {
			b.errorf(pos, "posting to undeclared account %s", name)
		} else {
			b.warnf(pos, "posting to undeclared account %s", name)
		}
		acct = &Account{
			Name:      name,
			OpenDate:  *date,
			Booking:   b.cfg.BookingMethod,
			Inventory: NewInventory(),
		}
		b.accounts[name] = acct
		return acct
	}
	if acct.Declared && !acct.IsOpen(*date) {
		if acct.CloseDate != nil && date.Time.After(acct.CloseDate.Time) {
			b.errorf(pos, "account %s is closed since %s", name, acct.CloseDate)
		} else {
			b.errorf(pos, "account %s is not open until %s", name, &acct.OpenDate)
		}
	}
	return acct
}

func (b *booker) balance(bal *ast.Balance) {
	acct := b.postingAccount(bal.Account, bal.Date, bal.Pos)

	expected, err := decimal.NewFromString(bal.Amount.Value)
	if err != nil {
		b.errorf(bal.Pos, "invalid balance amount %q", bal.Amount.Value)
		return
	}
	currency := bal.Amount.Currency
	actual := acct.Inventory.Total(currency)
	diff := expected.Sub(actual)
	if diff.Abs().LessThanOrEqual(b.cfg.BalanceTolerance) {
		return
	}

	if pad, ok := b.pads[bal.Account]; ok && !pad.used && !pad.directive.Date.Time.After(bal.Date.Time) {
		b.synthesizePad(pad.directive, bal, diff, currency)
		pad.used = true
		return
	}

	b.errorf(bal.Pos, "balance assertion failed for %s: expected %s %s, got %s %s (difference %s)",
		bal.Account, expected, currency, actual, currency, diff)
}

// synthesizePad inserts the balancing transaction a pad directive promises.
// It is dated the day before the assertion so the asserted opening balance
// already includes it, and flagged 'P' to mark it as synthetic.
func (b *booker) synthesizePad(pad *ast.Pad, bal *ast.Balance, diff decimal.Decimal, currency string) {
	date := ast.Date{Time: bal.Date.AddDate(0, 0, -1)}

	acct := b.postingAccount(pad.Account, &date, pad.Pos)
	padAcct := b.postingAccount(pad.AccountPad, &date, pad.Pos)
	acct.Inventory.Add(diff, currency)
	padAcct.Inventory.Add(diff.Neg(), currency)

	txn := &Transaction{
		Date:      date,
		Flag:      "P",
		Narration: fmt.Sprintf("(Padding inserted for balance of %s %s for %s)", bal.Amount.Value, currency, bal.Account),
		Balanced:  true,
		Synthetic: true,
		Pos:       pad.Pos,
	}
	postings := []*Posting{
		{Account: pad.Account, Units: diff, Currency: currency, Pos: pad.Pos},
		{Account: pad.AccountPad, Units: diff.Neg(), Currency: currency, Pos: pad.Pos},
	}
	b.txns = append(b.txns, &bookedTxn{txn: txn, postings: postings})
}

func (b *booker) snapshot() *Snapshot {
	// Synthetic pad transactions were appended out of date order; a stable
	// date sort restores the scan order while keeping same-date source order.
	slices.SortStableFunc(b.txns, func(x, y *bookedTxn) int {
		return x.txn.Date.Compare(y.txn.Date.Time)
	})

	snap := &Snapshot{
		Config:      b.cfg,
		Diagnostics: b.diags,
		Events:      b.events,
		prices:      b.prices,
	}
	for i, bt := range b.txns {
		bt.txn.ID = i
		snap.Transactions = append(snap.Transactions, bt.txn)
		for _, p := range bt.postings {
			p.ID = len(snap.Postings)
			p.Transaction = i
			snap.Postings = append(snap.Postings, p)
		}
	}
	for _, acct := range b.accounts {
		snap.Accounts = append(snap.Accounts, acct)
	}
	snap.finalize()
	return snap
}

package ledger

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
)

// Transaction is one booked transaction row. ID is its index in the snapshot
// arena; postings reference it by that index.
type Transaction struct {
	ID        int
	Date      ast.Date
	Flag      string
	Payee     string
	Narration string
	Tags      []string
	Links     []string

	// Balanced is false when the postings did not sum to zero within
	// tolerance or an amount could not be interpolated.
	Balanced bool

	// Synthetic marks pad-generated transactions, which have no source line
	// of their own beyond the pad directive.
	Synthetic bool

	Pos ast.Position
}

// Posting is one booked account-leg, flattened for relational scans.
// Transaction is the index of the owning transaction in the arena.
type Posting struct {
	ID          int
	Transaction int
	Flag        string
	Account     ast.Account
	Units       decimal.Decimal
	Currency    string

	Cost         *decimal.Decimal
	CostCurrency string
	CostDate     *ast.Date
	CostLabel    string

	Price         *decimal.Decimal
	PriceCurrency string

	// Interpolated marks the elided posting whose amount was derived from
	// the residual of its siblings.
	Interpolated bool

	Pos ast.Position
}

// BalanceRow is the final position of one account in one commodity, summed
// across lots.
type BalanceRow struct {
	Account  ast.Account
	Currency string
	Units    decimal.Decimal
}

// EventRow is one event observation.
type EventRow struct {
	Date  ast.Date
	Name  string
	Value string
	Pos   ast.Position
}

// Snapshot is the immutable result of one booking pass. Every container is a
// flat slice with cross-references expressed as indices, so concurrent
// readers can scan without locks and rows can be addressed by position.
type Snapshot struct {
	Config *Config

	// Transactions and Postings are sorted by (date, source order);
	// synthetic pad transactions sort at their effective date.
	Transactions []*Transaction
	Postings     []*Posting

	// Accounts is sorted by name and includes undeclared accounts that
	// appeared in postings, marked via Declared on the entry.
	Accounts []*Account

	Balances []*BalanceRow
	Prices   []*PricePoint
	Events   []*EventRow

	// Diagnostics preserves booking order: the order in which problems were
	// found while walking the date-sorted directive stream.
	Diagnostics []*Diagnostic

	accountIndex map[ast.Account]int
	declared     []*Account
	prices       *priceSeries
}

// DeclaredAccounts returns the accounts opened by a directive, sorted by
// name. Accounts that only appeared in postings are excluded.
func (s *Snapshot) DeclaredAccounts() []*Account {
	return s.declared
}

// Account looks up an account by name.
func (s *Snapshot) Account(name ast.Account) (*Account, bool) {
	i, ok := s.accountIndex[name]
	if !ok {
		return nil, false
	}
	return s.Accounts[i], true
}

// PriceAt returns the most recent rate converting base into quote at or
// before the given date, consulting the inverse pair when no direct
// observation exists.
func (s *Snapshot) PriceAt(base, quote string, date ast.Date) (decimal.Decimal, bool) {
	return s.prices.lookup(base, quote, date)
}

// HasErrors reports whether any diagnostic of Error severity was recorded.
func (s *Snapshot) HasErrors() bool {
	for _, d := range s.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// TransactionPostings returns the postings belonging to the transaction with
// the given ID, in source order.
func (s *Snapshot) TransactionPostings(id int) []*Posting {
	var out []*Posting
	for _, p := range s.Postings {
		if p.Transaction == id {
			out = append(out, p)
		}
	}
	return out
}

func (s *Snapshot) finalize() {
	slices.SortFunc(s.Accounts, func(a, b *Account) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})
	s.accountIndex = make(map[ast.Account]int, len(s.Accounts))
	for i, a := range s.Accounts {
		s.accountIndex[a.Name] = i
		if a.Declared {
			s.declared = append(s.declared, a)
		}
	}

	s.Balances = s.Balances[:0]
	for _, a := range s.Accounts {
		for _, currency := range a.Inventory.Currencies() {
			s.Balances = append(s.Balances, &BalanceRow{
				Account:  a.Name,
				Currency: currency,
				Units:    a.Inventory.Total(currency),
			})
		}
	}

	s.Prices = s.prices.all()
}

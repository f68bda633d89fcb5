package query

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
	"github.com/robinvdvleuten/beansql/ledger"
)

func dateCell(d *ast.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func decCell(d decimal.Decimal) any {
	return d.InexactFloat64()
}

func optDecCell(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}

func textCell(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// accounts lists declared accounts with their lifecycle and constraints.
type accountsTable struct{}

func (accountsTable) Name() string { return "accounts" }

func (accountsTable) Columns() []Column {
	return []Column{
		{"name", Text},
		{"open_date", Text},
		{"close_date", Text},
		{"currencies", Text},
		{"booking_method", Text},
	}
}

func (accountsTable) Rows(snap *ledger.Snapshot) int { return len(snap.DeclaredAccounts()) }

func (accountsTable) Value(snap *ledger.Snapshot, row, col int) any {
	a := snap.DeclaredAccounts()[row]
	switch col {
	case 0:
		return string(a.Name)
	case 1:
		return a.OpenDate.String()
	case 2:
		return dateCell(a.CloseDate)
	case 3:
		return textCell(strings.Join(a.Currencies, ","))
	case 4:
		return string(a.Booking)
	}
	return nil
}

func (accountsTable) DateColumn() int    { return -1 }
func (accountsTable) AccountColumn() int { return 0 }

// transactions lists booked transactions, including synthetic pad entries,
// in (date, source order).
type transactionsTable struct{}

func (transactionsTable) Name() string { return "transactions" }

func (transactionsTable) Columns() []Column {
	return []Column{
		{"id", Integer},
		{"date", Text},
		{"flag", Text},
		{"payee", Text},
		{"narration", Text},
		{"tags", Text},
		{"links", Text},
		{"is_balanced", Bool},
		{"filename", Text},
		{"line", Integer},
	}
}

func (transactionsTable) Rows(snap *ledger.Snapshot) int { return len(snap.Transactions) }

func (transactionsTable) Value(snap *ledger.Snapshot, row, col int) any {
	t := snap.Transactions[row]
	switch col {
	case 0:
		return int64(t.ID)
	case 1:
		return t.Date.String()
	case 2:
		return t.Flag
	case 3:
		return textCell(t.Payee)
	case 4:
		return textCell(t.Narration)
	case 5:
		return textCell(strings.Join(t.Tags, ","))
	case 6:
		return textCell(strings.Join(t.Links, ","))
	case 7:
		return t.Balanced
	case 8:
		return textCell(t.Pos.Filename)
	case 9:
		return int64(t.Pos.Line)
	}
	return nil
}

func (transactionsTable) DateColumn() int    { return 1 }
func (transactionsTable) AccountColumn() int { return -1 }

// postings flattens every transaction leg with its booked amounts, cost
// basis and price annotation.
type postingsTable struct{}

func (postingsTable) Name() string { return "postings" }

func (postingsTable) Columns() []Column {
	return []Column{
		{"id", Integer},
		{"transaction_id", Integer},
		{"date", Text},
		{"flag", Text},
		{"account", Text},
		{"amount", Float},
		{"currency", Text},
		{"cost_amount", Float},
		{"cost_currency", Text},
		{"cost_date", Text},
		{"cost_label", Text},
		{"price_amount", Float},
		{"price_currency", Text},
	}
}

func (postingsTable) Rows(snap *ledger.Snapshot) int { return len(snap.Postings) }

func (postingsTable) Value(snap *ledger.Snapshot, row, col int) any {
	p := snap.Postings[row]
	switch col {
	case 0:
		return int64(p.ID)
	case 1:
		return int64(p.Transaction)
	case 2:
		return snap.Transactions[p.Transaction].Date.String()
	case 3:
		return textCell(p.Flag)
	case 4:
		return string(p.Account)
	case 5:
		return decCell(p.Units)
	case 6:
		return textCell(p.Currency)
	case 7:
		return optDecCell(p.Cost)
	case 8:
		return textCell(p.CostCurrency)
	case 9:
		return dateCell(p.CostDate)
	case 10:
		return textCell(p.CostLabel)
	case 11:
		return optDecCell(p.Price)
	case 12:
		return textCell(p.PriceCurrency)
	}
	return nil
}

func (postingsTable) DateColumn() int    { return 2 }
func (postingsTable) AccountColumn() int { return 4 }

// balances is the final per-account, per-commodity position.
type balancesTable struct{}

func (balancesTable) Name() string { return "balances" }

func (balancesTable) Columns() []Column {
	return []Column{
		{"account", Text},
		{"currency", Text},
		{"amount", Float},
	}
}

func (balancesTable) Rows(snap *ledger.Snapshot) int { return len(snap.Balances) }

func (balancesTable) Value(snap *ledger.Snapshot, row, col int) any {
	b := snap.Balances[row]
	switch col {
	case 0:
		return string(b.Account)
	case 1:
		return b.Currency
	case 2:
		return decCell(b.Units)
	}
	return nil
}

func (balancesTable) DateColumn() int    { return -1 }
func (balancesTable) AccountColumn() int { return 0 }

// prices is the date-sorted rate series.
type pricesTable struct{}

func (pricesTable) Name() string { return "prices" }

func (pricesTable) Columns() []Column {
	return []Column{
		{"date", Text},
		{"base", Text},
		{"quote", Text},
		{"rate", Float},
	}
}

func (pricesTable) Rows(snap *ledger.Snapshot) int { return len(snap.Prices) }

func (pricesTable) Value(snap *ledger.Snapshot, row, col int) any {
	p := snap.Prices[row]
	switch col {
	case 0:
		return p.Date.String()
	case 1:
		return p.Base
	case 2:
		return p.Quote
	case 3:
		return decCell(p.Rate)
	}
	return nil
}

func (pricesTable) DateColumn() int    { return 0 }
func (pricesTable) AccountColumn() int { return -1 }

// events is the date-sorted event series.
type eventsTable struct{}

func (eventsTable) Name() string { return "events" }

func (eventsTable) Columns() []Column {
	return []Column{
		{"date", Text},
		{"name", Text},
		{"value", Text},
	}
}

func (eventsTable) Rows(snap *ledger.Snapshot) int { return len(snap.Events) }

func (eventsTable) Value(snap *ledger.Snapshot, row, col int) any {
	e := snap.Events[row]
	switch col {
	case 0:
		return e.Date.String()
	case 1:
		return e.Name
	case 2:
		return e.Value
	}
	return nil
}

func (eventsTable) DateColumn() int    { return 0 }
func (eventsTable) AccountColumn() int { return -1 }

// diagnostics surfaces everything the booking pass flagged, queryable like
// any other table.
type diagnosticsTable struct{}

func (diagnosticsTable) Name() string { return "diagnostics" }

func (diagnosticsTable) Columns() []Column {
	return []Column{
		{"severity", Text},
		{"message", Text},
		{"filename", Text},
		{"line", Integer},
		{"column", Integer},
	}
}

func (diagnosticsTable) Rows(snap *ledger.Snapshot) int { return len(snap.Diagnostics) }

func (diagnosticsTable) Value(snap *ledger.Snapshot, row, col int) any {
	d := snap.Diagnostics[row]
	switch col {
	case 0:
		return d.Severity.String()
	case 1:
		return d.Message
	case 2:
		return textCell(d.Pos.Filename)
	case 3:
		return int64(d.Pos.Line)
	case 4:
		return int64(d.Pos.Column)
	}
	return nil
}

func (diagnosticsTable) DateColumn() int    { return -1 }
func (diagnosticsTable) AccountColumn() int { return -1 }

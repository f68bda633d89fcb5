package ledger

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
)

// transaction books one transaction: resolve posting weights, interpolate
// the single elided amount from the residual, verify the postings sum to
// zero within tolerance, and apply every leg to its account's inventory.
// Unbalanced transactions are flagged and recorded, never dropped.
func (b *booker) transaction(txn *ast.Transaction) {
	t := &Transaction{
		Date:      *txn.Date,
		Flag:      txn.Flag,
		Payee:     txn.Payee,
		Narration: txn.Narration,
		Balanced:  true,
		Pos:       txn.Pos,
	}
	for _, tag := range txn.Tags {
		t.Tags = append(t.Tags, string(tag))
	}
	for _, link := range txn.Links {
		t.Links = append(t.Links, string(link))
	}

	rows := make([]*Posting, 0, len(txn.Postings))
	residuals := make(map[string]decimal.Decimal)
	var elided []*Posting

	for _, p := range txn.Postings {
		row := &Posting{Flag: p.Flag, Account: p.Account, Pos: p.Pos}
		rows = append(rows, row)

		if p.Amount == nil {
			if p.Cost != nil || p.Price != nil {
				b.errorf(p.Pos, "posting without an amount cannot carry a cost or price")
				t.Balanced = false
			}
			elided = append(elided, row)
			continue
		}
		units, err := decimal.NewFromString(p.Amount.Value)
		if err != nil {
			b.errorf(p.Pos, "invalid amount %q", p.Amount.Value)
			t.Balanced = false
			continue
		}
		row.Units = units
		row.Currency = p.Amount.Currency

		weight, currency, ok := b.bookPosting(txn.Date, row, p)
		if !ok {
			t.Balanced = false
			continue
		}
		residuals[currency] = residuals[currency].Add(weight)
	}

	switch len(elided) {
	case 0:
	case 1:
		b.interpolate(txn.Date, t, elided[0], residuals)
	default:
		b.errorf(txn.Pos, "at most one posting may omit its amount")
		t.Balanced = false
	}

	for _, currency := range sortedCurrencies(residuals) {
		residual := residuals[currency]
		if residual.Abs().GreaterThan(b.cfg.BalanceTolerance) {
			b.errorf(txn.Pos, "transaction does not balance: residual %s %s", residual, currency)
			t.Balanced = false
		}
	}

	b.txns = append(b.txns, &bookedTxn{txn: t, postings: rows})
}

// interpolate derives the elided posting's amount: the negated residual. The
// residual must be confined to a single currency, otherwise no one amount
// can absorb it.
func (b *booker) interpolate(date *ast.Date, t *Transaction, row *Posting, residuals map[string]decimal.Decimal) {
	var nonzero []string
	for _, currency := range sortedCurrencies(residuals) {
		if !residuals[currency].IsZero() {
			nonzero = append(nonzero, currency)
		}
	}
	if len(nonzero) != 1 {
		b.errorf(row.Pos, "cannot infer amount for posting to %s: residual spans %d currencies", row.Account, len(nonzero))
		t.Balanced = false
		return
	}

	currency := nonzero[0]
	row.Units = residuals[currency].Neg()
	row.Currency = currency
	row.Interpolated = true
	residuals[currency] = decimal.Zero

	acct := b.postingAccount(row.Account, date, row.Pos)
	if !acct.AcceptsCurrency(currency) {
		b.errorf(row.Pos, "account %s does not accept %s", row.Account, currency)
	}
	acct.Inventory.Add(row.Units, currency)
}

// bookPosting applies one explicit-amount posting to its account's inventory
// and returns the balancing weight: total cost when a cost basis is in play,
// the price conversion when only a price is annotated, the raw amount
// otherwise.
func (b *booker) bookPosting(date *ast.Date, row *Posting, src *ast.Posting) (decimal.Decimal, string, bool) {
	acct := b.postingAccount(row.Account, date, row.Pos)
	if !acct.AcceptsCurrency(row.Currency) {
		b.errorf(row.Pos, "account %s does not accept %s", row.Account, row.Currency)
	}

	if src.Cost == nil {
		acct.Inventory.Add(row.Units, row.Currency)
		if src.Price == nil {
			return row.Units, row.Currency, true
		}
		per, ok := b.perUnitPrice(src, row)
		if !ok {
			return decimal.Zero, "", false
		}
		row.Price = &per
		row.PriceCurrency = src.Price.Currency
		return row.Units.Mul(per), src.Price.Currency, true
	}

	if src.Price != nil {
		// Record the annotation; the weight of a costed leg stays at cost so
		// the residual lands on the gains posting.
		if per, ok := b.perUnitPrice(src, row); ok {
			row.Price = &per
			row.PriceCurrency = src.Price.Currency
		}
	}

	switch {
	case row.Units.Sign() > 0 && src.Cost.Amount != nil && !src.Cost.IsMerge:
		return b.augment(acct, row, src, date)
	case row.Units.Sign() < 0:
		return b.reduce(acct, row, src)
	default:
		b.errorf(row.Pos, "cost specification on %s requires an explicit acquisition cost", row.Account)
		acct.Inventory.Add(row.Units, row.Currency)
		return decimal.Zero, "", false
	}
}

// augment books an acquisition at cost as a new lot.
func (b *booker) augment(acct *Account, row *Posting, src *ast.Posting, date *ast.Date) (decimal.Decimal, string, bool) {
	cost := src.Cost
	per, err := decimal.NewFromString(cost.Amount.Value)
	if err != nil {
		b.errorf(row.Pos, "invalid cost %q", cost.Amount.Value)
		return decimal.Zero, "", false
	}
	if cost.IsTotal {
		per = per.Div(row.Units)
	}

	lotDate := cost.Date
	if lotDate == nil {
		d := *date
		lotDate = &d
	}
	acct.Inventory.AddLot(&Lot{
		Units:        row.Units,
		Currency:     row.Currency,
		Cost:         &per,
		CostCurrency: cost.Amount.Currency,
		Date:         lotDate,
		Label:        cost.Label,
	})

	row.Cost = &per
	row.CostCurrency = cost.Amount.Currency
	row.CostDate = lotDate
	row.CostLabel = cost.Label
	return row.Units.Mul(per), cost.Amount.Currency, true
}

// reduce books a disposal against existing lots via the account's booking
// method and weighs the posting by the cost basis actually consumed.
func (b *booker) reduce(acct *Account, row *Posting, src *ast.Posting) (decimal.Decimal, string, bool) {
	cost := src.Cost
	spec := &lotSpec{date: cost.Date, label: cost.Label}
	if cost.Amount != nil {
		per, err := decimal.NewFromString(cost.Amount.Value)
		if err != nil {
			b.errorf(row.Pos, "invalid cost %q", cost.Amount.Value)
			return decimal.Zero, "", false
		}
		if cost.IsTotal {
			per = per.Div(row.Units.Abs())
		}
		spec.cost = &per
		spec.costCurrency = cost.Amount.Currency
	}

	method := acct.Booking
	if method == "" {
		method = b.cfg.BookingMethod
	}
	if cost.IsMerge {
		method = BookingAverage
	}

	consumed, err := acct.Inventory.Reduce(row.Units.Abs(), row.Currency, spec, method)
	if err != nil {
		b.errorf(row.Pos, "%s: %s", row.Account, err)
		return decimal.Zero, "", false
	}

	weight := decimal.Zero
	for _, l := range consumed {
		weight = weight.Sub(l.Units.Mul(*l.Cost))
	}
	currency := consumed[0].CostCurrency

	if len(consumed) == 1 {
		row.Cost = consumed[0].Cost
		row.CostCurrency = consumed[0].CostCurrency
		row.CostDate = consumed[0].Date
		row.CostLabel = consumed[0].Label
	} else {
		avg := weight.Neg().Div(row.Units.Abs())
		row.Cost = &avg
		row.CostCurrency = currency
	}
	return weight, currency, true
}

// perUnitPrice normalizes @ and @@ annotations to a per-unit rate.
func (b *booker) perUnitPrice(src *ast.Posting, row *Posting) (decimal.Decimal, bool) {
	per, err := decimal.NewFromString(src.Price.Value)
	if err != nil {
		b.errorf(row.Pos, "invalid price %q", src.Price.Value)
		return decimal.Zero, false
	}
	if src.PriceTotal {
		if row.Units.IsZero() {
			b.errorf(row.Pos, "total price on a zero-unit posting")
			return decimal.Zero, false
		}
		per = per.Div(row.Units.Abs())
	}
	return per, true
}

func sortedCurrencies(residuals map[string]decimal.Decimal) []string {
	currencies := make([]string, 0, len(residuals))
	for currency := range residuals {
		currencies = append(currencies, currency)
	}
	slices.Sort(currencies)
	return currencies
}

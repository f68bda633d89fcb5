package ledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Inventory holds the lots of a single account. Lots are kept in insertion
// order, which is acquisition order given the date-sorted booking pass.
type Inventory struct {
	lots []*Lot
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{}
}

// Lots returns the current positions, excluding emptied lots.
func (inv *Inventory) Lots() []*Lot {
	out := make([]*Lot, 0, len(inv.lots))
	for _, l := range inv.lots {
		if !l.Units.IsZero() {
			out = append(out, l)
		}
	}
	return out
}

// Total sums the units held in the given commodity across all lots,
// regardless of cost basis.
func (inv *Inventory) Total(currency string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.lots {
		if l.Currency == currency {
			total = total.Add(l.Units)
		}
	}
	return total
}

// Currencies returns the distinct commodities with a non-zero position,
// sorted for deterministic output.
func (inv *Inventory) Currencies() []string {
	var out []string
	for _, l := range inv.lots {
		if !l.Units.IsZero() && !slices.Contains(out, l.Currency) {
			out = append(out, l.Currency)
		}
	}
	slices.Sort(out)
	return out
}

// Add merges signed units without a cost basis into the inventory. A single
// costless lot per commodity absorbs all such postings and may go negative.
func (inv *Inventory) Add(units decimal.Decimal, currency string) {
	for _, l := range inv.lots {
		if l.Currency == currency && !l.HasCost() {
			l.Units = l.Units.Add(units)
			return
		}
	}
	inv.lots = append(inv.lots, &Lot{Units: units, Currency: currency})
}

// AddLot augments the inventory with units acquired at cost. Lots with an
// identical basis (cost, currency, date, label) are merged.
func (inv *Inventory) AddLot(lot *Lot) {
	for _, l := range inv.lots {
		if l.Currency == lot.Currency && sameBasis(l, lot) {
			l.Units = l.Units.Add(lot.Units)
			return
		}
	}
	inv.lots = append(inv.lots, lot)
}

func sameBasis(a, b *Lot) bool {
	if a.HasCost() != b.HasCost() {
		return false
	}
	if !a.HasCost() {
		return true
	}
	return a.Cost.Equal(*b.Cost) &&
		a.CostCurrency == b.CostCurrency &&
		a.Date.Equal(b.Date) &&
		a.Label == b.Label
}

// Reduce removes units (a positive magnitude) of the commodity held at cost,
// selecting lots per the booking method. It returns the lots that were
// consumed, with their consumed units, so callers can derive cost weights.
func (inv *Inventory) Reduce(units decimal.Decimal, currency string, spec *lotSpec, method BookingMethod) ([]*Lot, error) {
	switch method {
	case BookingStrict:
		return inv.reduceStrict(units, currency, spec)
	case BookingAverage:
		return inv.reduceAverage(units, currency)
	default:
		return inv.reduceFIFO(units, currency, spec)
	}
}

// reduceStrict requires the spec to single out exactly one lot.
func (inv *Inventory) reduceStrict(units decimal.Decimal, currency string, spec *lotSpec) ([]*Lot, error) {
	var matched []*Lot
	for _, l := range inv.lots {
		if l.Currency == currency && !l.Units.IsZero() && spec.matches(l) {
			matched = append(matched, l)
		}
	}
	switch len(matched) {
	case 0:
		return nil, fmt.Errorf("no lot of %s matches the cost spec", currency)
	case 1:
	default:
		return nil, fmt.Errorf("ambiguous cost spec matches %d lots of %s", len(matched), currency)
	}
	lot := matched[0]
	if lot.Units.LessThan(units) {
		return nil, fmt.Errorf("lot holds %s %s, cannot reduce by %s", lot.Units, currency, units)
	}
	lot.Units = lot.Units.Sub(units)
	consumed := *lot
	consumed.Units = units
	return []*Lot{&consumed}, nil
}

// reduceFIFO consumes the oldest matching lots first. Lot age is the lot
// date when present, falling back to insertion order.
func (inv *Inventory) reduceFIFO(units decimal.Decimal, currency string, spec *lotSpec) ([]*Lot, error) {
	candidates := make([]*Lot, 0, len(inv.lots))
	for _, l := range inv.lots {
		if l.Currency == currency && !l.Units.IsZero() && spec.matches(l) {
			candidates = append(candidates, l)
		}
	}
	slices.SortStableFunc(candidates, func(a, b *Lot) int {
		switch {
		case a.Date == nil || b.Date == nil:
			return 0
		case a.Date.Time.Before(b.Date.Time):
			return -1
		case b.Date.Time.Before(a.Date.Time):
			return 1
		}
		return 0
	})

	available := decimal.Zero
	for _, l := range candidates {
		available = available.Add(l.Units)
	}
	if available.LessThan(units) {
		return nil, fmt.Errorf("inventory holds %s %s, cannot reduce by %s", available, currency, units)
	}

	var consumed []*Lot
	remaining := units
	for _, l := range candidates {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(l.Units, remaining)
		l.Units = l.Units.Sub(take)
		remaining = remaining.Sub(take)
		part := *l
		part.Units = take
		consumed = append(consumed, &part)
	}
	return consumed, nil
}

// reduceAverage blends every lot of the commodity into a single position at
// the weighted-average cost, then reduces from it.
func (inv *Inventory) reduceAverage(units decimal.Decimal, currency string) ([]*Lot, error) {
	var (
		totalUnits = decimal.Zero
		totalCost  = decimal.Zero
		costCur    string
		rest       []*Lot
	)
	for _, l := range inv.lots {
		if l.Currency == currency && l.HasCost() && !l.Units.IsZero() {
			totalUnits = totalUnits.Add(l.Units)
			totalCost = totalCost.Add(l.Units.Mul(*l.Cost))
			costCur = l.CostCurrency
			continue
		}
		rest = append(rest, l)
	}
	if totalUnits.LessThan(units) {
		return nil, fmt.Errorf("inventory holds %s %s, cannot reduce by %s", totalUnits, currency, units)
	}

	avg := totalCost.Div(totalUnits)
	blended := &Lot{Units: totalUnits.Sub(units), Currency: currency, Cost: &avg, CostCurrency: costCur}
	inv.lots = append(rest, blended)

	consumed := *blended
	consumed.Units = units
	return []*Lot{&consumed}, nil
}

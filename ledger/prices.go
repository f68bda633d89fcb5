package ledger

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
)

// PricePoint is one observed exchange rate: one unit of Base was worth Rate
// units of Quote on Date.
type PricePoint struct {
	Date  ast.Date
	Base  string
	Quote string
	Rate  decimal.Decimal
	Pos   ast.Position
}

// priceSeries keeps per-pair rate observations in date order so lookups can
// forward-fill the latest rate at or before a given date.
type priceSeries struct {
	points map[[2]string][]*PricePoint
}

func newPriceSeries() *priceSeries {
	return &priceSeries{points: make(map[[2]string][]*PricePoint)}
}

func (ps *priceSeries) add(p *PricePoint) {
	key := [2]string{p.Base, p.Quote}
	series := ps.points[key]
	i, _ := slices.BinarySearchFunc(series, p, func(a, b *PricePoint) int {
		return a.Date.Compare(b.Date.Time)
	})
	// Insert after any same-date points so the last observation wins.
	for i < len(series) && series[i].Date.Equal(&p.Date) {
		i++
	}
	ps.points[key] = slices.Insert(series, i, p)
}

// lookup returns the most recent rate for base/quote at or before date. When
// no direct observation exists it tries the inverse pair.
func (ps *priceSeries) lookup(base, quote string, date ast.Date) (decimal.Decimal, bool) {
	if rate, ok := ps.lookupDirect(base, quote, date); ok {
		return rate, true
	}
	if rate, ok := ps.lookupDirect(quote, base, date); ok && !rate.IsZero() {
		return decimal.NewFromInt(1).Div(rate), true
	}
	return decimal.Zero, false
}

func (ps *priceSeries) lookupDirect(base, quote string, date ast.Date) (decimal.Decimal, bool) {
	series := ps.points[[2]string{base, quote}]
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i].Date.Time.After(date.Time) {
			return series[i].Rate, true
		}
	}
	return decimal.Zero, false
}

func (ps *priceSeries) all() []*PricePoint {
	var out []*PricePoint
	for _, series := range ps.points {
		out = append(out, series...)
	}
	slices.SortStableFunc(out, func(a, b *PricePoint) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		if c := strings.Compare(a.Base, b.Base); c != 0 {
			return c
		}
		return strings.Compare(a.Quote, b.Quote)
	})
	return out
}

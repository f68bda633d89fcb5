package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
)

// Lot is a position acquired at a particular cost. Units held without a cost
// basis are a single lot with a nil Cost.
type Lot struct {
	Units    decimal.Decimal
	Currency string

	// Cost is the per-unit acquisition cost, nil for costless holdings.
	Cost         *decimal.Decimal
	CostCurrency string
	Date         *ast.Date
	Label        string
}

// HasCost reports whether the lot carries a cost basis.
func (l *Lot) HasCost() bool {
	return l.Cost != nil
}

func (l *Lot) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", l.Units, l.Currency)
	if l.Cost != nil {
		fmt.Fprintf(&sb, " {%s %s", l.Cost, l.CostCurrency)
		if l.Date != nil {
			fmt.Fprintf(&sb, ", %s", l.Date)
		}
		if l.Label != "" {
			fmt.Fprintf(&sb, ", %q", l.Label)
		}
		sb.WriteString("}")
	}
	return sb.String()
}

// lotSpec is the cost filter a reducing posting supplies in its {...} braces.
// Any field left unset matches everything.
type lotSpec struct {
	cost         *decimal.Decimal
	costCurrency string
	date         *ast.Date
	label        string
}

func (s *lotSpec) isEmpty() bool {
	return s == nil || (s.cost == nil && s.date == nil && s.label == "")
}

// matches reports whether a lot satisfies every constraint the spec carries.
func (s *lotSpec) matches(l *Lot) bool {
	if !l.HasCost() {
		return false
	}
	if s == nil {
		return true
	}
	if s.cost != nil {
		if l.Cost == nil || !s.cost.Equal(*l.Cost) {
			return false
		}
		if s.costCurrency != "" && s.costCurrency != l.CostCurrency {
			return false
		}
	}
	if s.date != nil && !s.date.Equal(l.Date) {
		return false
	}
	if s.label != "" && s.label != l.Label {
		return false
	}
	return true
}

package ledger

import (
	"slices"

	"github.com/robinvdvleuten/beansql/ast"
)

// Account tracks the lifecycle and holdings of a single declared account.
type Account struct {
	Name ast.Account

	// OpenDate and CloseDate delimit the interval in which postings to the
	// account are valid. CloseDate is nil while the account remains open.
	OpenDate  ast.Date
	CloseDate *ast.Date

	// Currencies constrains which commodities the account may hold. Empty
	// means unconstrained.
	Currencies []string

	// Booking is the lot-matching method for reductions against this
	// account, either inherited from the config or set on the Open.
	Booking BookingMethod

	// Declared is false for accounts that only ever appeared in postings.
	// Their balances are still tracked so totals stay meaningful.
	Declared bool

	Inventory *Inventory
}

// IsOpen reports whether the account accepts postings on the given date.
func (a *Account) IsOpen(date ast.Date) bool {
	if date.Time.Before(a.OpenDate.Time) {
		return false
	}
	if a.CloseDate != nil && date.Time.After(a.CloseDate.Time) {
		return false
	}
	return true
}

// AcceptsCurrency reports whether the account's currency constraint, if any,
// admits the given commodity.
func (a *Account) AcceptsCurrency(currency string) bool {
	if len(a.Currencies) == 0 {
		return true
	}
	return slices.Contains(a.Currencies, currency)
}

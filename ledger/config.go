package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ast"
)

// BookingMethod selects how a reducing posting is matched to existing lots.
type BookingMethod string

const (
	// BookingStrict requires the posting's cost spec to identify exactly one
	// lot; an ambiguous or absent match is a diagnostic.
	BookingStrict BookingMethod = "strict"
	// BookingFIFO consumes the oldest matching lots first. The default.
	BookingFIFO BookingMethod = "fifo"
	// BookingAverage blends the cost basis across all lots of the commodity.
	BookingAverage BookingMethod = "average"
)

// ParseBookingMethod parses a booking method name, case-insensitively.
func ParseBookingMethod(s string) (BookingMethod, error) {
	switch strings.ToLower(s) {
	case "strict":
		return BookingStrict, nil
	case "fifo":
		return BookingFIFO, nil
	case "average":
		return BookingAverage, nil
	default:
		return "", fmt.Errorf("invalid booking method %q, expected strict, fifo or average", s)
	}
}

// Config holds the booking configuration for one pass. There is no ambient
// default state: every knob is an explicit value passed into Book (or connect,
// at the driver surface).
type Config struct {
	// BookingMethod is the ledger-wide default lot-matching method. An Open
	// directive may override it per account.
	BookingMethod BookingMethod

	// BalanceTolerance bounds the acceptable residual for transaction
	// balancing and balance assertions.
	BalanceTolerance decimal.Decimal

	// StrictAccounts escalates postings to undeclared accounts from warnings
	// to errors.
	StrictAccounts bool
}

// DefaultConfig returns the documented defaults: fifo booking, 0.005
// tolerance, lenient accounts.
func DefaultConfig() *Config {
	return &Config{
		BookingMethod:    BookingFIFO,
		BalanceTolerance: decimal.NewFromFloat(0.005),
	}
}

// ApplyOptions overlays `option` directives from the ledger file onto the
// config. Recognized options: booking_method, balance_tolerance,
// strict_accounts. Unknown options and invalid values are diagnostics, never
// failures.
func (c *Config) ApplyOptions(options []*ast.Option) []*Diagnostic {
	var diags []*Diagnostic
	for _, opt := range options {
		switch opt.Name {
		case "booking_method":
			method, err := ParseBookingMethod(opt.Value)
			if err != nil {
				diags = append(diags, errorf(opt.Pos, "%s", err))
				continue
			}
			c.BookingMethod = method
		case "balance_tolerance":
			tolerance, err := decimal.NewFromString(opt.Value)
			if err != nil {
				diags = append(diags, errorf(opt.Pos, "invalid balance_tolerance %q", opt.Value))
				continue
			}
			c.BalanceTolerance = tolerance
		case "strict_accounts":
			c.StrictAccounts = strings.EqualFold(opt.Value, "true")
		default:
			diags = append(diags, warnf(opt.Pos, "unknown option %q", opt.Name))
		}
	}
	return diags
}

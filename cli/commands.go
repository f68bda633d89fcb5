package cli

import (
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ledger"
)

// Globals defines flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

// Commands is the top-level command tree.
type Commands struct {
	Globals

	Check CheckCmd `cmd:"" help:"Load and book a ledger, reporting every diagnostic."`
	Query QueryCmd `cmd:"" help:"Run SQL against a booked ledger."`
	Parse ParseCmd `cmd:"" help:"Parse a ledger file and dump its directives."`
}

// bookingFlags maps the shared booking knobs onto a ledger config.
type bookingFlags struct {
	BookingMethod    string `help:"Default lot booking method (strict, fifo or average)." default:"fifo" enum:"strict,fifo,average"`
	BalanceTolerance string `help:"Tolerance for transaction balancing and balance assertions." default:"0.005"`
	StrictAccounts   bool   `help:"Treat postings to undeclared accounts as errors."`
}

func (f *bookingFlags) config() (*ledger.Config, error) {
	cfg := ledger.DefaultConfig()
	method, err := ledger.ParseBookingMethod(f.BookingMethod)
	if err != nil {
		return nil, err
	}
	cfg.BookingMethod = method

	tolerance, err := decimal.NewFromString(f.BalanceTolerance)
	if err != nil {
		return nil, err
	}
	cfg.BalanceTolerance = tolerance
	cfg.StrictAccounts = f.StrictAccounts
	return cfg, nil
}

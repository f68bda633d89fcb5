// Package driver registers the "beansql" database/sql driver. A DSN names a
// ledger file plus booking options; connecting loads and books the ledger
// and exposes the booked snapshot as read-only SQL tables.
//
// DSN form:
//
//	path/to/main.bean?booking_method=fifo&balance_tolerance=0.005&strict_accounts=false
//
// The SQL surface requires the sqlite_vtable build tag; without it the
// driver is registered but refuses to open.
package driver

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beansql/ledger"
)

// Config is a parsed DSN.
type Config struct {
	// Path is the entry ledger file, or a directory of *.bean files; includes
	// are resolved relative to the file that names them.
	Path string

	Ledger *ledger.Config
}

// ParseDSN splits a DSN into the ledger path and booking options. Unknown
// options are rejected here, unlike in-file options, because a typo in the
// DSN has no diagnostics channel to land in.
func ParseDSN(dsn string) (*Config, error) {
	path, query, _ := strings.Cut(dsn, "?")
	if path == "" {
		return nil, fmt.Errorf("empty ledger path in dsn %q", dsn)
	}

	cfg := &Config{Path: path, Ledger: ledger.DefaultConfig()}
	if query == "" {
		return cfg, nil
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("malformed dsn options: %w", err)
	}
	for key := range values {
		value := values.Get(key)
		switch key {
		case "booking_method":
			method, err := ledger.ParseBookingMethod(value)
			if err != nil {
				return nil, err
			}
			cfg.Ledger.BookingMethod = method
		case "balance_tolerance":
			tolerance, err := decimal.NewFromString(value)
			if err != nil {
				return nil, fmt.Errorf("invalid balance_tolerance %q", value)
			}
			cfg.Ledger.BalanceTolerance = tolerance
		case "strict_accounts":
			cfg.Ledger.StrictAccounts = strings.EqualFold(value, "true")
		default:
			return nil, fmt.Errorf("unknown dsn option %q", key)
		}
	}
	return cfg, nil
}

// cacheKey is the part of the config that distinguishes snapshots booked
// from identical file contents.
func (c *Config) cacheKey() string {
	return fmt.Sprintf("%s|%s|%t", c.Ledger.BookingMethod, c.Ledger.BalanceTolerance, c.Ledger.StrictAccounts)
}

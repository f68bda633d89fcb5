package ast

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Amount represents a numerical value with its associated currency or commodity
// symbol. The value is kept as the literal string from the input to preserve its
// exact decimal representation; conversion to decimal arithmetic happens in the
// booking engine.
type Amount struct {
	Value    string
	Currency string
}

func (a *Amount) String() string {
	if a == nil {
		return ""
	}
	return a.Value + " " + a.Currency
}

// Cost represents the cost basis specification attached to a posting. An empty
// cost {} selects a lot via the account's booking method. A merge cost {*}
// averages all lots. Otherwise the per-unit (or total, for {{...}}) cost amount,
// acquisition date and label identify a specific lot.
//
// Example cost specifications:
//
//	10 HOOL {518.73 USD}
//	10 HOOL {518.73 USD, 2014-05-01}
//	-5 HOOL {502.12 USD, "first-lot"}
//	10 HOOL {}
//	10 HOOL {*}
type Cost struct {
	Amount  *Amount
	Date    *Date
	Label   string
	IsTotal bool // {{...}} total-cost form
	IsMerge bool // {*}
}

// IsEmpty returns true for the empty cost specification {}.
// Distinguishes nil (no cost) from empty cost (booking-method lot selection).
func (c *Cost) IsEmpty() bool {
	return c != nil && !c.IsMerge && c.Amount == nil && c.Date == nil && c.Label == ""
}

// Account represents an account name of at least two colon-separated segments.
// The first segment must be one of the five root categories: Assets,
// Liabilities, Equity, Income, or Expenses. The account tree is implicit in the
// names; parent/child relationships are derived by prefix, never stored.
type Account string

// accountSegment validates segments after the root category. Must start with an
// uppercase letter or digit and may contain alphanumerics and hyphens.
var accountSegment = regexp.MustCompile(`^[A-Z0-9][A-Za-z0-9-]*$`)

// ParseAccount validates an account name string.
func ParseAccount(name string) (Account, error) {
	parts := strings.Split(name, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("account must have at least two segments: %s", name)
	}

	switch parts[0] {
	case "Assets", "Liabilities", "Equity", "Income", "Expenses":
	default:
		return "", fmt.Errorf("unexpected account type %q", parts[0])
	}

	for i := 1; i < len(parts); i++ {
		if !accountSegment.MatchString(parts[i]) {
			return "", fmt.Errorf("invalid account segment at position %d: %s", i, parts[i])
		}
	}

	return Account(name), nil
}

// Root returns the root category segment of the account name.
func (a Account) Root() string {
	if i := strings.IndexByte(string(a), ':'); i > 0 {
		return string(a)[:i]
	}
	return string(a)
}

// HasPrefix reports whether the account equals prefix or lives under it in the
// implicit account tree (prefix match on whole segments).
func (a Account) HasPrefix(prefix string) bool {
	s := string(a)
	if s == prefix {
		return true
	}
	return strings.HasPrefix(s, prefix) && len(s) > len(prefix) && s[len(prefix)] == ':'
}

// Date represents a calendar date in ISO 8601 format (YYYY-MM-DD).
type Date struct {
	time.Time
}

// NewDate parses a YYYY-MM-DD string into a Date.
func NewDate(value string) (*Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %s", value)
	}
	return &Date{Time: t}, nil
}

// MustDate parses a date and panics on failure. Intended for tests.
func MustDate(value string) *Date {
	d, err := NewDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Date) String() string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}

// IsZero is nil-safe so zero-value checks on optional dates never panic.
func (d *Date) IsZero() bool {
	return d == nil || d.Time.IsZero()
}

// Equal compares two dates, treating nil as unequal to any non-nil date.
func (d *Date) Equal(other *Date) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Time.Equal(other.Time)
}

// Tag is a #hashtag attached to a transaction, without the leading '#'.
type Tag string

// Link is a ^link attached to a transaction, without the leading '^'.
type Link string

// Metadata is one key-value pair attached to a directive or posting. Pairs are
// kept in source order and values verbatim, for later exposure as columns.
type Metadata struct {
	Key   string
	Value string
}

package ast

// Commodity declares a commodity or currency used in the ledger. Optional, but
// documents the tradable instruments a file expects.
//
// Example:
//
//	2014-01-01 commodity USD
type Commodity struct {
	Pos      Position
	Date     *Date
	Currency string

	withMetadata
}

var _ Directive = &Commodity{}

func (c *Commodity) Position() Position { return c.Pos }
func (c *Commodity) date() *Date        { return c.Date }
func (c *Commodity) Directive() string  { return "commodity" }

// Open declares the opening of an account, marking the start of its validity
// interval. Optionally constrains the currencies the account may hold and names
// a booking method (strict, fifo, average) overriding the ledger default.
//
// Example:
//
//	2014-05-01 open Assets:US:BofA:Checking USD
//	2014-05-01 open Assets:Investments:Brokerage USD,EUR "fifo"
type Open struct {
	Pos                  Position
	Date                 *Date
	Account              Account
	ConstraintCurrencies []string
	BookingMethod        string

	withMetadata
}

var _ Directive = &Open{}

func (o *Open) Position() Position { return o.Pos }
func (o *Open) date() *Date        { return o.Date }
func (o *Open) Directive() string  { return "open" }

// Close marks the end of an account's validity interval. Postings after the
// close date are diagnostics, not hard failures.
//
// Example:
//
//	2015-09-23 close Assets:US:BofA:Checking
type Close struct {
	Pos     Position
	Date    *Date
	Account Account

	withMetadata
}

var _ Directive = &Close{}

func (c *Close) Position() Position { return c.Pos }
func (c *Close) date() *Date        { return c.Date }
func (c *Close) Directive() string  { return "close" }

// Balance asserts that an account holds a specific amount of one commodity at
// the beginning of the given date. A mismatch beyond the configured tolerance
// is a diagnostic; the booking pass continues.
//
// Example:
//
//	2014-08-09 balance Assets:US:BofA:Checking 562.00 USD
type Balance struct {
	Pos     Position
	Date    *Date
	Account Account
	Amount  *Amount

	withMetadata
}

var _ Directive = &Balance{}

func (b *Balance) Position() Position { return b.Pos }
func (b *Balance) date() *Date        { return b.Date }
func (b *Balance) Directive() string  { return "balance" }

// Pad inserts a synthetic balancing transaction so that the next failing
// balance assertion for the account holds. The padding amount is posted against
// AccountPad. One pad satisfies at most one balance assertion.
//
// Example:
//
//	2014-01-01 pad Assets:US:BofA:Checking Equity:Opening-Balances
//	2014-08-09 balance Assets:US:BofA:Checking 562.00 USD
type Pad struct {
	Pos        Position
	Date       *Date
	Account    Account
	AccountPad Account

	withMetadata
}

var _ Directive = &Pad{}

func (p *Pad) Position() Position { return p.Pos }
func (p *Pad) date() *Date        { return p.Date }
func (p *Pad) Directive() string  { return "pad" }

// Note attaches a dated comment to an account.
//
// Example:
//
//	2014-07-09 note Assets:US:BofA:Checking "Called bank about pending deposit"
type Note struct {
	Pos         Position
	Date        *Date
	Account     Account
	Description string

	withMetadata
}

var _ Directive = &Note{}

func (n *Note) Position() Position { return n.Pos }
func (n *Note) date() *Date        { return n.Date }
func (n *Note) Directive() string  { return "note" }

// Document associates an external file with an account at a date.
//
// Example:
//
//	2014-07-09 document Assets:US:BofA:Checking "statements/2014-07.pdf"
type Document struct {
	Pos     Position
	Date    *Date
	Account Account
	Path    string

	withMetadata
}

var _ Directive = &Document{}

func (d *Document) Position() Position { return d.Pos }
func (d *Document) date() *Date        { return d.Date }
func (d *Document) Directive() string  { return "document" }

// Price records the price of a commodity in terms of another currency at a
// date. Price points feed the per-pair time series consulted for conversions
// that carry no explicit rate.
//
// Example:
//
//	2014-07-09 price USD 1.08 CAD
type Price struct {
	Pos       Position
	Date      *Date
	Commodity string
	Amount    *Amount

	withMetadata
}

var _ Directive = &Price{}

func (p *Price) Position() Position { return p.Pos }
func (p *Price) date() *Date        { return p.Date }
func (p *Price) Directive() string  { return "price" }

// Event records a named value at a date, tracking time-based state such as
// location or employer.
//
// Example:
//
//	2014-07-09 event "location" "New York, USA"
type Event struct {
	Pos   Position
	Date  *Date
	Name  string
	Value string

	withMetadata
}

var _ Directive = &Event{}

func (e *Event) Position() Position { return e.Pos }
func (e *Event) date() *Date        { return e.Date }
func (e *Event) Directive() string  { return "event" }

// Query stores a named SQL query inside the ledger itself.
//
// Example:
//
//	2014-07-09 query "food" "SELECT account, sum(amount) FROM postings"
type Query struct {
	Pos  Position
	Date *Date
	Name string
	SQL  string

	withMetadata
}

var _ Directive = &Query{}

func (q *Query) Position() Position { return q.Pos }
func (q *Query) date() *Date        { return q.Date }
func (q *Query) Directive() string  { return "query" }

// Custom is an open-ended directive carrying a type string and arbitrary typed
// values, used by external tooling.
//
// Example:
//
//	2014-07-09 custom "budget" "monthly" TRUE 45.30 USD
type Custom struct {
	Pos    Position
	Date   *Date
	Type   string
	Values []*CustomValue

	withMetadata
}

var _ Directive = &Custom{}

func (c *Custom) Position() Position { return c.Pos }
func (c *Custom) date() *Date        { return c.Date }
func (c *Custom) Directive() string  { return "custom" }

// CustomValue is a single value in a custom directive. Exactly one field is
// set: a string, a boolean, a bare number, or an amount.
type CustomValue struct {
	String  *string
	Boolean *bool
	Number  *string
	Amount  *Amount
}

// Transaction records a financial transaction: a date, a flag ('*' cleared,
// '!' pending, 'P' synthetic padding), optional payee, narration, tags and
// links, and two or more postings. Posting order is significant only for
// display; the booking engine requires the posting weights to sum to zero.
//
// Example:
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine with wine"
//	  Liabilities:CreditCard:CapitalOne  -37.45 USD
//	  Expenses:Food:Restaurant
type Transaction struct {
	Pos       Position
	Date      *Date
	Flag      string
	Payee     string
	Narration string
	Tags      []Tag
	Links     []Link

	withMetadata

	Postings []*Posting
}

var _ Directive = &Transaction{}

func (t *Transaction) Position() Position { return t.Pos }
func (t *Transaction) date() *Date        { return t.Date }
func (t *Transaction) Directive() string  { return "transaction" }

// Posting is one account-leg of a transaction. Amount may be nil for the single
// elided posting a transaction is allowed; Cost tracks lot identity; Price is a
// conversion-rate annotation (@ per-unit, @@ total).
type Posting struct {
	Pos        Position
	Flag       string
	Account    Account
	Amount     *Amount
	Cost       *Cost
	Price      *Amount
	PriceTotal bool // true for the @@ total-price form

	withMetadata
}

package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robinvdvleuten/beansql/ledger"
)

// Op is a comparison operator pushed down from the query engine.
type Op int

const (
	OpEQ Op = iota
	OpLT
	OpLE
	OpGT
	OpGE
	OpLike
)

// Constraint is one pushed-down predicate against a table column.
type Constraint struct {
	Column int
	Op     Op
	Value  any
}

// Supported reports whether the cursor can evaluate the constraint itself.
// Date columns take equality and range operators; account columns take
// equality and pure-prefix LIKE patterns. Everything else stays with the
// engine's own filtering.
func Supported(t Table, c Constraint) bool {
	if c.Column == t.DateColumn() && t.DateColumn() >= 0 {
		switch c.Op {
		case OpEQ, OpLT, OpLE, OpGT, OpGE:
			return true
		}
		return false
	}
	if c.Column == t.AccountColumn() && t.AccountColumn() >= 0 {
		switch c.Op {
		case OpEQ:
			return true
		case OpLike:
			_, ok := likePrefix(c.Value)
			return ok
		}
	}
	return false
}

// likePrefix extracts the literal prefix from a pattern of the form
// "prefix%". Patterns with interior wildcards are not prefix scans.
func likePrefix(v any) (string, bool) {
	pattern, ok := stringValue(v)
	if !ok || !strings.HasSuffix(pattern, "%") {
		return "", false
	}
	prefix := pattern[:len(pattern)-1]
	if strings.ContainsAny(prefix, "%_") {
		return "", false
	}
	return prefix, true
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

// Cursor iterates one table over one snapshot, honoring pushed-down
// constraints. On date-sorted tables, date ranges become index bounds so the
// scan starts at the first candidate row and stops at the upper bound
// instead of visiting the whole table.
type Cursor struct {
	table Table
	snap  *ledger.Snapshot
	cons  []Constraint

	row   int
	limit int
}

// NewCursor opens a scan. Constraints the table does not support per
// Supported are rejected; the engine should not have pushed them down.
func NewCursor(t Table, snap *ledger.Snapshot, cons []Constraint) (*Cursor, error) {
	for _, c := range cons {
		if !Supported(t, c) {
			return nil, fmt.Errorf("table %s: unsupported constraint on column %d", t.Name(), c.Column)
		}
	}
	cur := &Cursor{table: t, snap: snap, cons: cons, limit: t.Rows(snap)}
	cur.applyDateBounds()
	cur.seek()
	return cur, nil
}

// applyDateBounds narrows [row, limit) using date constraints and the
// table's date ordering.
func (c *Cursor) applyDateBounds() {
	dc := c.table.DateColumn()
	if dc < 0 {
		return
	}
	for _, con := range c.cons {
		if con.Column != dc {
			continue
		}
		value, ok := stringValue(con.Value)
		if !ok {
			continue
		}
		switch con.Op {
		case OpEQ:
			c.row = max(c.row, c.searchDate(dc, value, false))
			c.limit = min(c.limit, c.searchDate(dc, value, true))
		case OpGE:
			c.row = max(c.row, c.searchDate(dc, value, false))
		case OpGT:
			c.row = max(c.row, c.searchDate(dc, value, true))
		case OpLT:
			c.limit = min(c.limit, c.searchDate(dc, value, false))
		case OpLE:
			c.limit = min(c.limit, c.searchDate(dc, value, true))
		}
	}
}

// searchDate finds the first row whose date is >= value (or > value when
// after is set). ISO dates compare correctly as strings.
func (c *Cursor) searchDate(col int, value string, after bool) int {
	n := c.table.Rows(c.snap)
	return sort.Search(n, func(i int) bool {
		cell, _ := stringValue(c.table.Value(c.snap, i, col))
		if after {
			return cell > value
		}
		return cell >= value
	})
}

// seek advances to the next row satisfying the non-date constraints.
func (c *Cursor) seek() {
	for c.row < c.limit && !c.matches() {
		c.row++
	}
}

func (c *Cursor) matches() bool {
	ac := c.table.AccountColumn()
	for _, con := range c.cons {
		if con.Column != ac {
			continue
		}
		cell, _ := stringValue(c.table.Value(c.snap, c.row, ac))
		switch con.Op {
		case OpEQ:
			want, ok := stringValue(con.Value)
			if !ok || cell != want {
				return false
			}
		case OpLike:
			prefix, _ := likePrefix(con.Value)
			if !strings.HasPrefix(cell, prefix) {
				return false
			}
		}
	}
	return true
}

// Next advances to the following matching row.
func (c *Cursor) Next() {
	c.row++
	c.seek()
}

// EOF reports whether the scan is exhausted.
func (c *Cursor) EOF() bool {
	return c.row >= c.limit
}

// Column returns the current row's cell for the given column.
func (c *Cursor) Column(col int) any {
	return c.table.Value(c.snap, c.row, col)
}

// Rowid returns the current row's position in the table.
func (c *Cursor) Rowid() int64 {
	return int64(c.row)
}

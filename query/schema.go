// Package query exposes a booked snapshot as a relational catalog. The
// tables and cursors here are engine-agnostic; the SQLite virtual-table
// binding in vtab.go (built with -tags sqlite_vtable) adapts them to
// database/sql.
package query

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beansql/ledger"
)

// Type is the declared affinity of a column.
type Type int

const (
	Text Type = iota
	Integer
	Float
	Bool
)

func (t Type) String() string {
	switch t {
	case Integer, Bool:
		return "INTEGER"
	case Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Column describes one column of a catalog table.
type Column struct {
	Name string
	Type Type
}

// Table is one scannable relation over a snapshot. Implementations are
// stateless; the snapshot is passed into every accessor so one table
// definition serves concurrent scans over different snapshots.
type Table interface {
	Name() string
	Columns() []Column

	// Rows returns the number of rows the snapshot yields.
	Rows(snap *ledger.Snapshot) int

	// Value returns the cell at (row, col) as one of string, int64,
	// float64, bool or nil.
	Value(snap *ledger.Snapshot, row, col int) any

	// DateColumn is the index of the column holding an ISO date the rows
	// are sorted by, or -1. Date-sorted tables admit range pushdown with
	// early termination.
	DateColumn() int

	// AccountColumn is the index of the account-name column, or -1.
	// Account columns admit equality and prefix (LIKE 'x%') pushdown.
	AccountColumn() int
}

// Tables returns the full catalog in declaration order.
func Tables() []Table {
	return []Table{
		accountsTable{},
		transactionsTable{},
		postingsTable{},
		balancesTable{},
		pricesTable{},
		eventsTable{},
		diagnosticsTable{},
	}
}

// LookupTable finds a catalog table by name.
func LookupTable(name string) (Table, error) {
	for _, t := range Tables() {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown table %q", name)
}

// CreateStatement renders the CREATE TABLE declaration the virtual-table
// binding hands to the engine.
func CreateStatement(t Table) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(t.Name())
	sb.WriteString(" (")
	for i, col := range t.Columns() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col.Name)
		sb.WriteString(" ")
		sb.WriteString(col.Type.String())
	}
	sb.WriteString(")")
	return sb.String()
}

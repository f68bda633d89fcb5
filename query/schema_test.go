package query

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTables_Catalog(t *testing.T) {
	var names []string
	for _, table := range Tables() {
		names = append(names, table.Name())
	}
	assert.Equal(t, []string{"accounts", "transactions", "postings", "balances", "prices", "events", "diagnostics"}, names)
}

func TestLookupTable(t *testing.T) {
	table, err := LookupTable("postings")
	assert.NoError(t, err)
	assert.Equal(t, "postings", table.Name())

	_, err = LookupTable("nope")
	assert.Error(t, err)
}

func TestCreateStatement(t *testing.T) {
	table, err := LookupTable("balances")
	assert.NoError(t, err)
	assert.Equal(t, "CREATE TABLE balances (account TEXT, currency TEXT, amount REAL)", CreateStatement(table))
}

func TestTables_PushdownColumnsNameDateAndAccount(t *testing.T) {
	for _, table := range Tables() {
		cols := table.Columns()
		if dc := table.DateColumn(); dc >= 0 {
			assert.Equal(t, "date", cols[dc].Name, "table %s", table.Name())
		}
		if ac := table.AccountColumn(); ac >= 0 {
			name := cols[ac].Name
			assert.True(t, name == "account" || name == "name", "table %s has account column %q", table.Name(), name)
		}
	}
}

func TestTables_Values(t *testing.T) {
	snap := testSnapshot(t)

	tests := []struct {
		name  string
		table string
		row   int
		col   int
		want  any
	}{
		{name: "account name", table: "accounts", col: 0, want: "Assets:Checking"},
		{name: "account open date", table: "accounts", col: 1, want: "2023-01-01"},
		// Open accounts and unconstrained currencies are NULL cells.
		{name: "account close date null", table: "accounts", col: 2, want: nil},
		{name: "account currencies null", table: "accounts", col: 3, want: nil},
		{name: "account booking method", table: "accounts", col: 4, want: "fifo"},

		{name: "transaction id", table: "transactions", col: 0, want: int64(0)},
		{name: "transaction flag", table: "transactions", col: 2, want: "*"},
		{name: "transaction payee", table: "transactions", col: 3, want: "Grocer"},
		{name: "transaction narration", table: "transactions", col: 4, want: "Groceries"},
		{name: "transaction balanced", table: "transactions", col: 7, want: true},
		{name: "transaction filename", table: "transactions", col: 8, want: "test.bean"},
		{name: "transaction line", table: "transactions", col: 9, want: int64(5)},

		{name: "posting transaction id", table: "postings", col: 1, want: int64(0)},
		// The posting row carries the owning transaction's date.
		{name: "posting date", table: "postings", col: 2, want: "2023-01-05"},
		{name: "posting account", table: "postings", col: 4, want: "Assets:Checking"},
		{name: "posting amount", table: "postings", col: 5, want: -30.0},
		{name: "posting currency", table: "postings", col: 6, want: "USD"},
		{name: "posting cost null", table: "postings", col: 7, want: nil},
		{name: "posting price null", table: "postings", col: 11, want: nil},

		{name: "balance account", table: "balances", col: 0, want: "Assets:Checking"},
		{name: "balance currency", table: "balances", col: 1, want: "USD"},
		{name: "balance amount", table: "balances", col: 2, want: -975.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LookupTable(tt.table)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, table.Value(snap, tt.row, tt.col))
		})
	}

	accounts, _ := LookupTable("accounts")
	assert.Equal(t, 4, accounts.Rows(snap))
	postings, _ := LookupTable("postings")
	assert.Equal(t, 8, postings.Rows(snap))
}

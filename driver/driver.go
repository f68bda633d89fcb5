//go:build sqlite_vtable || vtable

package driver

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/robinvdvleuten/beansql/query"
)

func init() {
	sql.Register("beansql", &Driver{cache: NewCache()})
}

// Driver connects SQL sessions to booked ledger snapshots. Each connection
// is an in-memory SQLite database whose only tables are virtual tables over
// the snapshot; the snapshot itself is shared, immutable and scanned without
// locks.
type Driver struct {
	cache *Cache
}

// Open parses the DSN, books (or reuses) the snapshot and binds the catalog
// onto a fresh in-memory connection.
func (d *Driver) Open(dsn string) (sqldriver.Conn, error) {
	cfg, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	snap, err := d.cache.Snapshot(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	inner := &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return query.Register(conn, snap)
		},
	}
	return inner.Open(":memory:")
}

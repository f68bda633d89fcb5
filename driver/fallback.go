//go:build !(sqlite_vtable || vtable)

package driver

import (
	"database/sql"
	sqldriver "database/sql/driver"
	"errors"
)

func init() {
	sql.Register("beansql", unsupportedDriver{})
}

// unsupportedDriver stands in when the binary was built without the SQLite
// virtual table API, which go-sqlite3 gates behind a build tag.
type unsupportedDriver struct{}

func (unsupportedDriver) Open(string) (sqldriver.Conn, error) {
	return nil, errors.New(`sql support requires building with -tags "sqlite_vtable"`)
}

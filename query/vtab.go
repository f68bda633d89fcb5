//go:build sqlite_vtable || vtable

package query

import (
	"fmt"
	"strconv"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/robinvdvleuten/beansql/ledger"
)

// Module binds one catalog table over one snapshot as a SQLite virtual
// table. A fresh module is registered per connection so the snapshot travels
// with it; scans never take locks because the snapshot is immutable.
type Module struct {
	table Table
	snap  *ledger.Snapshot
}

// NewModule wraps a table and a snapshot for registration.
func NewModule(t Table, snap *ledger.Snapshot) *Module {
	return &Module{table: t, snap: snap}
}

// Register creates the full catalog on the connection: one module and one
// virtual table per catalog table.
func Register(conn *sqlite3.SQLiteConn, snap *ledger.Snapshot) error {
	for _, t := range Tables() {
		module := "beansql_" + t.Name()
		if err := conn.CreateModule(module, NewModule(t, snap)); err != nil {
			return fmt.Errorf("register %s: %w", t.Name(), err)
		}
		stmt := fmt.Sprintf("CREATE VIRTUAL TABLE %s USING %s", t.Name(), module)
		if _, err := conn.Exec(stmt, nil); err != nil {
			return fmt.Errorf("declare %s: %w", t.Name(), err)
		}
	}
	return nil
}

func (m *Module) Create(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	if err := c.DeclareVTab(CreateStatement(m.table)); err != nil {
		return nil, err
	}
	return &vtab{module: m}, nil
}

func (m *Module) Connect(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	return m.Create(c, args)
}

func (m *Module) DestroyModule() {}

type vtab struct {
	module *Module
}

// BestIndex offers to handle date ranges and account equality or prefix
// constraints. SQLite re-checks every constraint itself, so optimistically
// claiming a LIKE whose pattern turns out not to be a prefix scan is safe;
// Filter just ignores it.
func (v *vtab) BestIndex(csts []sqlite3.InfoConstraint, ob []sqlite3.InfoOrderBy) (*sqlite3.IndexResult, error) {
	t := v.module.table
	used := make([]bool, len(csts))
	var specs []string
	cost := float64(t.Rows(v.module.snap) + 1)

	for i, cst := range csts {
		if !cst.Usable {
			continue
		}
		op, ok := opFromSQLite(cst.Op)
		if !ok {
			continue
		}
		if !pushable(t, cst.Column, op) {
			continue
		}
		used[i] = true
		specs = append(specs, strconv.Itoa(cst.Column)+":"+strconv.Itoa(int(op)))
		cost /= 10
	}

	ordered := len(ob) == 1 && t.DateColumn() >= 0 && ob[0].Column == t.DateColumn() && !ob[0].Desc
	return &sqlite3.IndexResult{
		Used:           used,
		IdxNum:         0,
		IdxStr:         strings.Join(specs, ";"),
		AlreadyOrdered: ordered,
		EstimatedCost:  cost,
	}, nil
}

// pushable mirrors Supported but without the constraint value, which SQLite
// only provides at Filter time.
func pushable(t Table, column int, op Op) bool {
	if column == t.DateColumn() && t.DateColumn() >= 0 {
		return op != OpLike
	}
	if column == t.AccountColumn() && t.AccountColumn() >= 0 {
		return op == OpEQ || op == OpLike
	}
	return false
}

func opFromSQLite(op sqlite3.Op) (Op, bool) {
	switch op {
	case sqlite3.OpEQ:
		return OpEQ, true
	case sqlite3.OpLT:
		return OpLT, true
	case sqlite3.OpLE:
		return OpLE, true
	case sqlite3.OpGT:
		return OpGT, true
	case sqlite3.OpGE:
		return OpGE, true
	case sqlite3.OpLIKE:
		return OpLike, true
	}
	return 0, false
}

func (v *vtab) Open() (sqlite3.VTabCursor, error) {
	return &vtabCursor{vtab: v}, nil
}

func (v *vtab) Disconnect() error { return nil }
func (v *vtab) Destroy() error    { return nil }

type vtabCursor struct {
	vtab *vtab
	cur  *Cursor
}

func (c *vtabCursor) Filter(idxNum int, idxStr string, vals []interface{}) error {
	t := c.vtab.module.table

	var cons []Constraint
	if idxStr != "" {
		for i, spec := range strings.Split(idxStr, ";") {
			if i >= len(vals) {
				break
			}
			col, op, err := parseIndexSpec(spec)
			if err != nil {
				return err
			}
			con := Constraint{Column: col, Op: op, Value: vals[i]}
			if Supported(t, con) {
				cons = append(cons, con)
			}
		}
	}

	cur, err := NewCursor(t, c.vtab.module.snap, cons)
	if err != nil {
		return err
	}
	c.cur = cur
	return nil
}

func parseIndexSpec(spec string) (int, Op, error) {
	col, ops, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed index spec %q", spec)
	}
	column, err := strconv.Atoi(col)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed index spec %q", spec)
	}
	op, err := strconv.Atoi(ops)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed index spec %q", spec)
	}
	return column, Op(op), nil
}

func (c *vtabCursor) Next() error {
	c.cur.Next()
	return nil
}

func (c *vtabCursor) EOF() bool {
	return c.cur.EOF()
}

func (c *vtabCursor) Column(ctx *sqlite3.SQLiteContext, col int) error {
	switch v := c.cur.Column(col).(type) {
	case nil:
		ctx.ResultNull()
	case string:
		ctx.ResultText(v)
	case int64:
		ctx.ResultInt64(v)
	case float64:
		ctx.ResultDouble(v)
	case bool:
		ctx.ResultBool(v)
	default:
		return fmt.Errorf("column %d: unsupported value %T", col, v)
	}
	return nil
}

func (c *vtabCursor) Rowid() (int64, error) {
	return c.cur.Rowid(), nil
}

func (c *vtabCursor) Close() error {
	return nil
}

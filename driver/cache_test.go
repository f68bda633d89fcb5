package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/beansql/ledger"
	"github.com/robinvdvleuten/beansql/loader"
)

func writeLedger(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const cacheLedger = `2023-01-01 open Assets:Cash
2023-01-01 open Expenses:Food
2023-01-02 * "Lunch"
  Assets:Cash -10.00 USD
  Expenses:Food
`

func TestCache_ReusesSnapshotForUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeLedger(t, dir, "main.bean", cacheLedger)

	cache := NewCache()
	cfg := &Config{Path: path, Ledger: ledger.DefaultConfig()}

	first, err := cache.Snapshot(context.Background(), cfg)
	assert.NoError(t, err)
	second, err := cache.Snapshot(context.Background(), cfg)
	assert.NoError(t, err)

	// Same fingerprint, same snapshot instance.
	assert.True(t, first == second)
}

func TestCache_EditedFileBooksFresh(t *testing.T) {
	dir := t.TempDir()
	path := writeLedger(t, dir, "main.bean", cacheLedger)

	cache := NewCache()
	cfg := &Config{Path: path, Ledger: ledger.DefaultConfig()}

	first, err := cache.Snapshot(context.Background(), cfg)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(first.Transactions))

	writeLedger(t, dir, "main.bean", cacheLedger+`2023-01-03 * "Dinner"
  Assets:Cash -20.00 USD
  Expenses:Food
`)
	second, err := cache.Snapshot(context.Background(), cfg)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(second.Transactions))
}

func TestCache_EditedIncludeBooksFresh(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "accounts.bean", "2023-01-01 open Assets:Cash\n")
	path := writeLedger(t, dir, "main.bean", "include \"accounts.bean\"\n")

	cache := NewCache()
	cfg := &Config{Path: path, Ledger: ledger.DefaultConfig()}

	first, err := cache.Snapshot(context.Background(), cfg)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(first.DeclaredAccounts()))

	writeLedger(t, dir, "accounts.bean", "2023-01-01 open Assets:Cash\n2023-01-01 open Assets:Savings\n")
	second, err := cache.Snapshot(context.Background(), cfg)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(second.DeclaredAccounts()))
}

func TestCache_ConfigKeyedSeparately(t *testing.T) {
	dir := t.TempDir()
	path := writeLedger(t, dir, "main.bean", cacheLedger)

	cache := NewCache()
	lenient := &Config{Path: path, Ledger: ledger.DefaultConfig()}
	strictLedger := ledger.DefaultConfig()
	strictLedger.StrictAccounts = true
	strict := &Config{Path: path, Ledger: strictLedger}

	first, err := cache.Snapshot(context.Background(), lenient)
	assert.NoError(t, err)
	second, err := cache.Snapshot(context.Background(), strict)
	assert.NoError(t, err)

	assert.True(t, first != second)
}

func TestCache_SyntaxErrorsLandInDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := writeLedger(t, dir, "main.bean", "2023-01-01 open Assets:Cash\nnot a directive\n")

	cache := NewCache()
	cfg := &Config{Path: path, Ledger: ledger.DefaultConfig()}

	snap, err := cache.Snapshot(context.Background(), cfg)
	assert.NoError(t, err)
	assert.True(t, snap.HasErrors())
	assert.Equal(t, 1, len(snap.DeclaredAccounts()))
}

func TestCache_StructuralErrorFails(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "a.bean", "include \"b.bean\"\n")
	path := writeLedger(t, dir, "b.bean", "include \"a.bean\"\n")

	cache := NewCache()
	cfg := &Config{Path: path, Ledger: ledger.DefaultConfig()}

	snap, err := cache.Snapshot(context.Background(), cfg)
	assert.Zero(t, snap)
	var serr *loader.StructuralError
	assert.True(t, errors.As(err, &serr))
}

func TestCache_MissingFileFails(t *testing.T) {
	cache := NewCache()
	cfg := &Config{Path: filepath.Join(t.TempDir(), "nope.bean"), Ledger: ledger.DefaultConfig()}

	_, err := cache.Snapshot(context.Background(), cfg)
	assert.Error(t, err)
}

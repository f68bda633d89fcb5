// Package beansql turns plain-text double-entry ledgers into queryable
// relational data. The pipeline is load (parse plus include splicing), book
// (inventories, balance assertions, pad synthesis) and query (the booked
// snapshot served as SQL tables through the "beansql" database/sql driver).
package beansql

import (
	"context"

	"github.com/robinvdvleuten/beansql/ledger"
	"github.com/robinvdvleuten/beansql/loader"
)

// Load parses the ledger at path, follows its includes and books the result.
// Syntax errors are reported on the returned loader result and booking
// problems on the snapshot's diagnostics; only structural failures return an
// error.
func Load(ctx context.Context, path string, cfg *ledger.Config) (*ledger.Snapshot, *loader.Result, error) {
	result, err := loader.New().Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return ledger.Book(ctx, result.File, cfg), result, nil
}

// LoadFiles returns the set of files a load of path reads, in load order:
// the entry file plus every transitively included file. Used for file
// watching.
func LoadFiles(ctx context.Context, path string) ([]string, error) {
	result, err := loader.New().Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// LoadBytes books a ledger from in-memory source, attributing positions to
// filename. Includes are resolved relative to the current directory.
func LoadBytes(ctx context.Context, filename string, src []byte, cfg *ledger.Config) (*ledger.Snapshot, *loader.Result, error) {
	result, err := loader.New().LoadBytes(ctx, filename, src)
	if err != nil {
		return nil, nil, err
	}
	return ledger.Book(ctx, result.File, cfg), result, nil
}

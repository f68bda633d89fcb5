package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/robinvdvleuten/beansql/ledger"
	"github.com/robinvdvleuten/beansql/loader"
)

// Cache deduplicates booking work across connections. Snapshots are keyed by
// the content hash of every loaded file plus the booking config, so touching
// a file without changing it still hits the cache while any edit, in any
// included file, books fresh.
type Cache struct {
	snapshots sync.Map // fingerprint string -> *ledger.Snapshot
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Snapshot loads, fingerprints and books the ledger named by cfg, reusing a
// previously booked snapshot when the fingerprint matches. Syntax errors and
// diagnostics do not fail the call; they ride along on the snapshot's
// diagnostics table. Only structural failures (unreadable file, include
// cycle) return an error.
func (c *Cache) Snapshot(ctx context.Context, cfg *Config) (*ledger.Snapshot, error) {
	result, err := loader.New().Load(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}

	fingerprint, err := fingerprintFiles(result.Files, cfg)
	if err != nil {
		return nil, err
	}
	if cached, ok := c.snapshots.Load(fingerprint); ok {
		return cached.(*ledger.Snapshot), nil
	}

	snap := ledger.Book(ctx, result.File, cfg.Ledger)
	for _, serr := range result.SyntaxErrors {
		snap.Diagnostics = append(snap.Diagnostics, &ledger.Diagnostic{
			Severity: ledger.Error,
			Message:  serr.Message,
			Pos:      serr.Pos,
		})
	}

	actual, _ := c.snapshots.LoadOrStore(fingerprint, snap)
	return actual.(*ledger.Snapshot), nil
}

func fingerprintFiles(files []string, cfg *Config) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n", cfg.cacheKey())
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &loader.StructuralError{Path: path, Message: "cannot fingerprint file", Err: err}
		}
		fmt.Fprintf(h, "%s\n%d\n", path, len(data))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/domain"
)

// TableCache memoizes the first successful load of a ListingSource for the
// lifetime of the value. Failed loads are returned to the caller and not
// remembered, so the next call tries the source again.
type TableCache struct {
	src domain.ListingSource

	mu      sync.Mutex // serializes loads
	table   domain.Table
	version string

	loaded atomic.Bool // set once table and version are final
}

func NewTableCache(src domain.ListingSource) *TableCache {
	return &TableCache{src: src}
}

// Table returns the memoized table, loading it on first use.
func (c *TableCache) Table(ctx context.Context) (domain.Table, error) {
	t, _, err := c.Snapshot(ctx)
	return t, err
}

// Snapshot returns the table together with a short content fingerprint that
// changes whenever a different dataset is loaded.
func (c *TableCache) Snapshot(ctx context.Context) (domain.Table, string, error) {
	if c.loaded.Load() {
		return c.table, c.version, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded.Load() {
		return c.table, c.version, nil
	}

	t, err := c.src.Load(ctx)
	if err != nil {
		return domain.Table{}, "", err
	}
	c.table, c.version = t, fingerprint(t)
	c.loaded.Store(true)
	log.Info().Int("rows", t.Len()).Str("version", c.version).Msg("listing table loaded")
	return c.table, c.version, nil
}

// Loaded reports whether a table is memoized. It does not wait for a load in
// progress.
func (c *TableCache) Loaded() bool {
	return c.loaded.Load()
}

func fingerprint(t domain.Table) string {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Sprintf("rows-%d", t.Len())
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:6])
}

// Package cache memoizes query results per table behind a bounded LRU.
// Any mutation on a table drops every cached result for that table; there is
// no selective invalidation.
package cache

import (
	"encoding/json"

	lru "github.com/hashicorp/golang-lru"
	"github.com/zeebo/xxh3"

	"github.com/snapdb/snapdb/internal/query"
)

const DefaultCapacity = 1000

// Key carries the table name alongside the query fingerprint so that
// per-table invalidation can walk the key list instead of guessing from an
// opaque digest.
type Key struct {
	Table string
	Sum   uint64
}

type Cache struct {
	entries *lru.Cache
}

// New returns a cache bounded to capacity entries (entry count, not bytes).
// A capacity below one falls back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	// lru.New only fails for non-positive sizes, which are filtered above
	entries, _ := lru.New(capacity)
	return &Cache{entries: entries}
}

// fingerprint hashes the canonical json encoding of the query. Struct
// encoding is deterministic, so equal queries built in the same clause order
// always collide.
func fingerprint(table string, q query.Query) Key {
	raw, _ := json.Marshal(q)
	return Key{Table: table, Sum: xxh3.HashString(table + ":" + string(raw))}
}

func (c *Cache) Get(table string, q query.Query) ([]query.Record, bool) {
	v, ok := c.entries.Get(fingerprint(table, q))
	if !ok {
		return nil, false
	}
	return v.([]query.Record), true
}

// Set stores a result, evicting the least recently accessed entry when the
// cache is full.
func (c *Cache) Set(table string, q query.Query, result []query.Record) {
	c.entries.Add(fingerprint(table, q), result)
}

// Invalidate removes every cached result for the table.
func (c *Cache) Invalidate(table string) {
	for _, k := range c.entries.Keys() {
		if k.(Key).Table == table {
			c.entries.Remove(k)
		}
	}
}

// Reset drops all entries, for when the whole snapshot is replaced.
func (c *Cache) Reset() { c.entries.Purge() }

func (c *Cache) Len() int { return c.entries.Len() }

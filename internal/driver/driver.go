// Package driver owns the on-disk snapshot, the per-table sequences and the
// mutation lock. Every mutating call loads the full snapshot, changes it and
// rewrites the file; there is no append log. Two drivers pointed at the same
// files will corrupt each other — one process, one driver per path.
package driver

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/snapdb/snapdb/internal/cache"
	"github.com/snapdb/snapdb/internal/index"
	"github.com/snapdb/snapdb/internal/query"
	"github.com/snapdb/snapdb/internal/registry"
	"github.com/snapdb/snapdb/pkg"
)

type Driver struct {
	locker sync.RWMutex

	data_path  string
	index_path string

	results *cache.Cache
	indexes *index.Manager
	chain   []Interceptor
}

type Option func(*Driver)

// WithInterceptors installs the operation middleware chain, outermost first.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(d *Driver) { d.chain = append(d.chain, interceptors...) }
}

func WithCacheCapacity(n int) Option {
	return func(d *Driver) { d.results = cache.New(n) }
}

// New opens (or initializes) the database at path. The data lives in
// <path>.data; <path>.idx is reserved for index persistence and currently
// always holds {}.
func New(path string, opts ...Option) (*Driver, error) {
	d := &Driver{
		data_path:  path + ".data",
		index_path: path + ".idx",
		results:    cache.New(cache.DefaultCapacity),
		indexes:    index.NewManager(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if _, err := os.Stat(d.data_path); os.IsNotExist(err) {
		raw, _ := json.Marshal(NewSnapshot())
		if err := os.WriteFile(d.data_path, raw, 0644); err != nil {
			return nil, errors.Wrap(err, "initializing data file")
		}
	}
	if _, err := os.Stat(d.index_path); os.IsNotExist(err) {
		if err := os.WriteFile(d.index_path, []byte("{}"), 0644); err != nil {
			return nil, errors.Wrap(err, "initializing index file")
		}
	}

	pkg.DebugLog("opened database", path)
	return d, nil
}

func (d *Driver) GetLocker() *sync.RWMutex { return &d.locker }

func (d *Driver) DataPath() string  { return d.data_path }
func (d *Driver) IndexPath() string { return d.index_path }

func (d *Driver) Cache() *cache.Cache { return d.results }

func (d *Driver) Indexes() *index.Manager { return d.indexes }

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// CreateTable creates an empty table with a zero sequence. Calling it for an
// existing table is a no-op and keeps the original schema.
func (d *Driver) CreateTable(name string, schema registry.Schema) error {
	return d.run(OpCreateTable, name, func() (err error) {
		pkg.LockWrap(d, func() {
			var snapshot *Snapshot
			snapshot, err = d.load()
			if err != nil {
				return
			}
			if snapshot.Tables.Has(name) {
				return
			}
			snapshot.Tables.Set(name, &Table{Schema: schema, Records: NewRows()})
			snapshot.Sequences.Set(name, 0)
			err = d.save(snapshot)
		})
		return
	})
}

// Insert appends the record with the next sequence id and a created_at
// stamp, returning the assigned id. Ids are never reused, even after
// deletion.
func (d *Driver) Insert(table string, record query.Record) (int, error) {
	var id int
	err := d.run(OpInsert, table, func() (err error) {
		pkg.LockWrap(d, func() {
			var snapshot *Snapshot
			snapshot, err = d.load()
			if err != nil {
				return
			}
			t := snapshot.Tables.Get(table)
			if t == nil {
				err = errors.Wrap(ErrTableNotFound, table)
				return
			}

			next := snapshot.Sequences.Get(table) + 1
			snapshot.Sequences.Set(table, next)
			record.Set("id", next)
			record.Set("created_at", timestamp())
			t.Records.Insert(record)

			if err = d.save(snapshot); err != nil {
				return
			}
			id = next
			d.results.Invalidate(table)
		})
		return
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Select returns the records matching an equality-only predicate map, in id
// order. A missing table yields an empty collection. Select takes no lock:
// it decodes its own copy of the snapshot, so a concurrent writer can
// supersede but never corrupt the returned view.
func (d *Driver) Select(table string, where query.Record) ([]query.Record, error) {
	var out []query.Record
	err := d.run(OpSelect, table, func() error {
		snapshot, err := d.load()
		if err != nil {
			return err
		}
		t := snapshot.Tables.Get(table)
		if t == nil {
			out = []query.Record{}
			return nil
		}

		records := t.Records.All()
		if len(where) == 0 {
			out = records
			return nil
		}
		out = pkg.Filter(records, func(r query.Record) bool {
			for field, want := range where {
				if !query.Equal(r.Get(field), want) {
					return false
				}
			}
			return true
		})
		return nil
	})
	return out, err
}

// SelectOne returns the first match or nil.
func (d *Driver) SelectOne(table string, where query.Record) (query.Record, error) {
	records, err := d.Select(table, where)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

// Find runs a full query through the engine, short-circuited by the result
// cache. Like Select it takes no lock.
func (d *Driver) Find(q query.Query) ([]query.Record, error) {
	var out []query.Record
	err := d.run(OpSelect, q.Table, func() error {
		if cached, ok := d.results.Get(q.Table, q); ok {
			out = cached
			return nil
		}

		snapshot, err := d.load()
		if err != nil {
			return err
		}
		t := snapshot.Tables.Get(q.Table)
		if t == nil {
			out = []query.Record{}
			return nil
		}

		out = query.Apply(t.Records.All(), q)
		d.results.Set(q.Table, q, out)
		return nil
	})
	return out, err
}

// Update applies patch plus a fresh updated_at to every record matching the
// equality predicate and returns the count. A missing table or an empty
// match is a zero count, not an error. The file is rewritten only when the
// count is positive.
func (d *Driver) Update(table string, where, patch query.Record) (int, error) {
	count := 0
	err := d.run(OpUpdate, table, func() (err error) {
		pkg.LockWrap(d, func() {
			var snapshot *Snapshot
			snapshot, err = d.load()
			if err != nil {
				return
			}
			t := snapshot.Tables.Get(table)
			if t == nil {
				return
			}

			for _, record := range t.Records.All() {
				if !matchesAll(record, where) {
					continue
				}
				for field, value := range patch {
					record.Set(field, value)
				}
				record.Set("updated_at", timestamp())
				count++
			}

			if count > 0 {
				if err = d.save(snapshot); err != nil {
					count = 0
					return
				}
				d.results.Invalidate(table)
			}
		})
		return
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes every record matching the equality predicate and returns
// the count; sequences are untouched so the freed ids are never reassigned.
func (d *Driver) Delete(table string, where query.Record) (int, error) {
	count := 0
	err := d.run(OpDelete, table, func() (err error) {
		pkg.LockWrap(d, func() {
			var snapshot *Snapshot
			snapshot, err = d.load()
			if err != nil {
				return
			}
			t := snapshot.Tables.Get(table)
			if t == nil {
				return
			}

			for _, record := range t.Records.All() {
				if matchesAll(record, where) && t.Records.Delete(RowID(record)) {
					count++
				}
			}

			if count > 0 {
				if err = d.save(snapshot); err != nil {
					count = 0
					return
				}
				d.results.Invalidate(table)
			}
		})
		return
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func matchesAll(r query.Record, where query.Record) bool {
	for field, want := range where {
		if !query.Equal(r.Get(field), want) {
			return false
		}
	}
	return true
}

package driver

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	sorted "github.com/tobshub/go-sortedmap"

	"github.com/snapdb/snapdb/internal/query"
	"github.com/snapdb/snapdb/internal/registry"
	"github.com/snapdb/snapdb/pkg"
)

// Table is one named record collection and its declared schema.
// The schema is immutable after creation; there is no ALTER path.
type Table struct {
	Schema  registry.Schema `json:"schema"`
	Records *Rows           `json:"records"`
}

// Snapshot is the full materialization of the database file. Every table
// name in Tables has a matching entry in Sequences.
type Snapshot struct {
	Tables    pkg.Map[string, *Table] `json:"tables"`
	Sequences pkg.Map[string, int]    `json:"sequences"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Tables:    pkg.Map[string, *Table]{},
		Sequences: pkg.Map[string, int]{},
	}
}

// Rows stores a table's records sorted by id. It persists as a plain json
// array, so the on-disk order is the insertion (id) order.
type Rows struct {
	m     *sorted.SortedMap[int, query.Record]
	count int
}

func RowID(r query.Record) int {
	return pkg.NumToInt(r.Get("id"))
}

func rowLess(a, b query.Record) bool {
	return RowID(a) < RowID(b)
}

func NewRows() *Rows {
	return &Rows{m: sorted.New[int, query.Record](0, rowLess)}
}

func (r *Rows) Insert(rec query.Record) {
	id := RowID(rec)
	if _, ok := r.m.Get(id); ok {
		r.m.Replace(id, rec)
		return
	}
	if r.m.Insert(id, rec) {
		r.count++
	}
}

func (r *Rows) Get(id int) (query.Record, bool) {
	return r.m.Get(id)
}

func (r *Rows) Delete(id int) bool {
	if _, ok := r.m.Get(id); !ok {
		return false
	}
	r.m.Delete(id)
	r.count--
	return true
}

func (r *Rows) Len() int { return r.count }

// All returns the records in id order.
func (r *Rows) All() []query.Record {
	out := []query.Record{}
	iter, err := r.m.IterCh()
	if err != nil {
		// empty map
		return out
	}
	defer iter.Close()
	for rec := range iter.Records() {
		out = append(out, rec.Val)
	}
	return out
}

func (r *Rows) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.All())
}

func (r *Rows) UnmarshalJSON(data []byte) error {
	var records []query.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	fresh := NewRows()
	for _, rec := range records {
		fresh.Insert(rec)
	}
	*r = *fresh
	return nil
}

// load decodes the current snapshot from the data file.
func (d *Driver) load() (*Snapshot, error) {
	raw, err := os.ReadFile(d.data_path)
	if err != nil {
		return nil, errors.Wrap(err, "reading data file")
	}

	snapshot := NewSnapshot()
	if err := json.Unmarshal(raw, snapshot); err != nil {
		return nil, errors.Wrap(err, "decoding data file")
	}
	if snapshot.Tables == nil {
		snapshot.Tables = pkg.Map[string, *Table]{}
	}
	if snapshot.Sequences == nil {
		snapshot.Sequences = pkg.Map[string, int]{}
	}
	return snapshot, nil
}

// save rewrites the whole data file. A crash mid-write can truncate the
// file; that risk is accepted in exchange for the single-snapshot model.
func (d *Driver) save(snapshot *Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	if err := os.WriteFile(d.data_path, raw, 0644); err != nil {
		return errors.Wrap(err, "writing data file")
	}
	return nil
}

package driver

import "github.com/snapdb/snapdb/internal/query"

type TableStats struct {
	RecordCount int `json:"record_count"`
	NextID      int `json:"next_id"`
}

type Stats struct {
	Tables map[string]TableStats `json:"tables"`
}

// Stats reports per-table record counts and the next id each sequence would
// assign, for health probes and the CLI.
func (d *Driver) Stats() (*Stats, error) {
	snapshot, err := d.load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Tables: map[string]TableStats{}}
	for name, t := range snapshot.Tables {
		stats.Tables[name] = TableStats{
			RecordCount: t.Records.Len(),
			NextID:      snapshot.Sequences.Get(name) + 1,
		}
	}
	return stats, nil
}

// Aggregate reduces the records matching an equality predicate with one of
// the query package's aggregation operations. An unknown operation name is
// an error naming the operation.
func (d *Driver) Aggregate(table, operation, field string, where query.Record) (any, error) {
	var result any
	err := d.run(OpAggregate, table, func() error {
		records, err := d.Select(table, where)
		if err != nil {
			return err
		}
		result, err = query.Aggregate(records, operation, field)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

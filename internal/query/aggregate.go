package query

import (
	"github.com/pkg/errors"

	"github.com/snapdb/snapdb/pkg"
)

const (
	AggCount = "count"
	AggSum   = "sum"
	AggAvg   = "avg"
	AggMin   = "min"
	AggMax   = "max"
)

var ErrUnknownAggregate = errors.New("unknown aggregation operation")

// Aggregate reduces records over one field. Non-numeric values are skipped
// for sum/avg; min/max skip absent fields and return nil when nothing is left.
func Aggregate(records []Record, operation string, field string) (any, error) {
	switch operation {
	case AggCount:
		return len(records), nil
	case AggSum:
		return sumField(records, field), nil
	case AggAvg:
		if len(records) == 0 {
			return 0.0, nil
		}
		return sumField(records, field) / float64(len(records)), nil
	case AggMin:
		return extremum(records, field, func(v, best any) bool { return Less(v, best) }), nil
	case AggMax:
		return extremum(records, field, func(v, best any) bool { return Less(best, v) }), nil
	}
	return nil, errors.Wrap(ErrUnknownAggregate, operation)
}

func sumField(records []Record, field string) float64 {
	total := 0.0
	for _, r := range records {
		if v, ok := pkg.NumToFloat(r.Get(field)); ok {
			total += v
		}
	}
	return total
}

func extremum(records []Record, field string, better func(v, best any) bool) any {
	var best any
	for _, r := range records {
		v := r.Get(field)
		if v == nil {
			continue
		}
		if best == nil || better(v, best) {
			best = v
		}
	}
	return best
}

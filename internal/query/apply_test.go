package query_test

import (
	"errors"
	"testing"

	"gotest.tools/assert"

	"github.com/snapdb/snapdb/internal/query"
)

func ids(records []query.Record) []int {
	out := []int{}
	for _, r := range records {
		out = append(out, r.Get("id").(int))
	}
	return out
}

func TestFilterGte(t *testing.T) {
	records := []query.Record{
		{"id": 1, "age": 25},
		{"id": 2, "age": 30},
		{"id": 3, "age": 20},
	}
	res := query.Apply(records, query.New("users").Where("age", query.OpGte, 25))
	assert.DeepEqual(t, ids(res), []int{1, 2})
}

func TestFilterILike(t *testing.T) {
	records := []query.Record{
		{"id": 1, "name": "John"},
		{"id": 2, "name": "Jo"},
	}
	res := query.Apply(records, query.New("users").Where("name", query.OpILike, "john"))
	assert.DeepEqual(t, ids(res), []int{1})

	// like has no case-sensitive variant
	res = query.Apply(records, query.New("users").Where("name", query.OpLike, "JOHN"))
	assert.DeepEqual(t, ids(res), []int{1})
}

func TestFilterOperators(t *testing.T) {
	records := []query.Record{
		{"id": 1, "role": "admin", "age": 40},
		{"id": 2, "role": "user", "age": 25},
		{"id": 3, "role": "user"},
	}

	res := query.Apply(records, query.New("users").Where("role", query.OpNe, "admin"))
	assert.DeepEqual(t, ids(res), []int{2, 3})

	res = query.Apply(records, query.New("users").Where("role", query.OpIn, []string{"admin", "root"}))
	assert.DeepEqual(t, ids(res), []int{1})

	res = query.Apply(records, query.New("users").Where("role", query.OpNotIn, []any{"admin"}))
	assert.DeepEqual(t, ids(res), []int{2, 3})

	// ordering comparisons never match a missing field
	res = query.Apply(records, query.New("users").Where("age", query.OpGt, 10))
	assert.DeepEqual(t, ids(res), []int{1, 2})
	res = query.Apply(records, query.New("users").Where("age", query.OpLte, 100))
	assert.DeepEqual(t, ids(res), []int{1, 2})

	res = query.Apply(records, query.New("users").Where("age", query.OpIsNull, nil))
	assert.DeepEqual(t, ids(res), []int{3})
	res = query.Apply(records, query.New("users").Where("age", query.OpIsNotNull, nil))
	assert.DeepEqual(t, ids(res), []int{1, 2})
}

func TestFilterNumericCoercion(t *testing.T) {
	// json decoding turns numbers into float64
	records := []query.Record{{"id": 1, "age": float64(25)}}
	res := query.Apply(records, query.New("users").Where("age", query.OpEq, 25))
	assert.Equal(t, len(res), 1)
}

func TestEmptyConditionsReturnAll(t *testing.T) {
	records := []query.Record{{"id": 1}, {"id": 2}}
	res := query.Apply(records, query.New("users"))
	assert.Equal(t, len(res), 2)
}

func TestSortFirstKeyPrimary(t *testing.T) {
	records := []query.Record{
		{"id": 1, "group": 2, "name": "a"},
		{"id": 2, "group": 1, "name": "b"},
		{"id": 3, "group": 1, "name": "a"},
	}
	res := query.Apply(records, query.New("users").OrderBy("group", false).OrderBy("name", true))
	assert.DeepEqual(t, ids(res), []int{2, 3, 1})
}

func TestSortStable(t *testing.T) {
	records := []query.Record{
		{"id": 1, "group": 1},
		{"id": 2, "group": 1},
		{"id": 3, "group": 1},
	}
	res := query.Apply(records, query.New("users").OrderBy("group", false))
	assert.DeepEqual(t, ids(res), []int{1, 2, 3})
}

func TestSortMissingFieldAsEmpty(t *testing.T) {
	records := []query.Record{
		{"id": 1, "name": "b"},
		{"id": 2},
		{"id": 3, "name": "a"},
	}
	res := query.Apply(records, query.New("users").OrderBy("name", false))
	assert.DeepEqual(t, ids(res), []int{2, 3, 1})
}

func TestOffsetAndLimit(t *testing.T) {
	records := []query.Record{{"id": 1}, {"id": 2}, {"id": 3}, {"id": 4}}

	res := query.Apply(records, query.New("users").Offset(1).Limit(2))
	assert.DeepEqual(t, ids(res), []int{2, 3})

	res = query.Apply(records, query.New("users").Offset(10))
	assert.Equal(t, len(res), 0)

	// zero limit means no limit, not zero rows
	res = query.Apply(records, query.New("users").Limit(0))
	assert.Equal(t, len(res), 4)
}

func TestProjection(t *testing.T) {
	records := []query.Record{{"id": 1, "name": "a", "age": 30}}
	res := query.Apply(records, query.New("users").Select("name", "missing"))
	assert.DeepEqual(t, res, []query.Record{{"name": "a"}})
}

func TestBuilderReturnsCopies(t *testing.T) {
	base := query.New("users").Where("role", query.OpEq, "user")
	admins := base.Where("age", query.OpGte, 18)
	guests := base.Where("age", query.OpLt, 18)

	assert.Equal(t, len(base.Conditions), 1)
	assert.Equal(t, len(admins.Conditions), 2)
	assert.Equal(t, len(guests.Conditions), 2)
	assert.Equal(t, guests.Conditions[1].Operator, query.OpLt)
}

func TestAggregate(t *testing.T) {
	records := []query.Record{
		{"id": 1, "age": 20},
		{"id": 2, "age": 30},
		{"id": 3, "name": "no age"},
	}

	count, err := query.Aggregate(records, query.AggCount, "age")
	assert.NilError(t, err)
	assert.Equal(t, count, 3)

	sum, err := query.Aggregate(records, query.AggSum, "age")
	assert.NilError(t, err)
	assert.Equal(t, sum, 50.0)

	avg, err := query.Aggregate(records, query.AggAvg, "age")
	assert.NilError(t, err)
	assert.Equal(t, avg, 50.0/3)

	min, err := query.Aggregate(records, query.AggMin, "age")
	assert.NilError(t, err)
	assert.Equal(t, min, 20)

	max, err := query.Aggregate(records, query.AggMax, "age")
	assert.NilError(t, err)
	assert.Equal(t, max, 30)
}

func TestAggregateUnknownOperation(t *testing.T) {
	_, err := query.Aggregate([]query.Record{}, "median", "age")
	assert.ErrorContains(t, err, "median")
	assert.Assert(t, errors.Is(err, query.ErrUnknownAggregate))
}

package query

import "github.com/snapdb/snapdb/pkg"

// Record maps a field name to its saved value.
type Record = pkg.Map[string, any]

type Operator string

const (
	OpEq        Operator = "eq"
	OpNe        Operator = "ne"
	OpGt        Operator = "gt"
	OpGte       Operator = "gte"
	OpLt        Operator = "lt"
	OpLte       Operator = "lte"
	OpIn        Operator = "in"
	OpNotIn     Operator = "not_in"
	OpLike      Operator = "like"
	OpILike     Operator = "ilike"
	OpIsNull    Operator = "is_null"
	OpIsNotNull Operator = "is_not_null"
)

type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

type Order struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Query is an immutable description of a select over one table.
// Builder methods return updated copies, so a Query can be shared and
// extended without affecting the queries derived from it.
//
// The json encoding of a Query is canonical: struct fields encode in
// declaration order and the clause slices preserve construction order,
// which is what the cache fingerprints.
type Query struct {
	Table      string      `json:"table"`
	Conditions []Condition `json:"where"`
	Orders     []Order     `json:"order_by"`
	Skip       int         `json:"offset"`
	Take       int         `json:"limit"`
	Fields     []string    `json:"select"`
}

func New(table string) Query {
	return Query{Table: table}
}

func (q Query) Where(field string, op Operator, value any) Query {
	q.Conditions = append(q.Conditions[:len(q.Conditions):len(q.Conditions)],
		Condition{Field: field, Operator: op, Value: value})
	return q
}

func (q Query) OrderBy(field string, desc bool) Query {
	q.Orders = append(q.Orders[:len(q.Orders):len(q.Orders)], Order{Field: field, Desc: desc})
	return q
}

func (q Query) Offset(n int) Query {
	q.Skip = n
	return q
}

// Limit caps the result size. A limit of zero means "no limit": the zero
// value of a Query must describe an unconstrained select.
func (q Query) Limit(n int) Query {
	q.Take = n
	return q
}

// Select projects results down to the given fields.
func (q Query) Select(fields ...string) Query {
	q.Fields = append(q.Fields[:len(q.Fields):len(q.Fields)], fields...)
	return q
}

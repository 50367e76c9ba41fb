package query

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/snapdb/snapdb/pkg"
)

// Apply runs a query over an in-memory record collection:
// filter, then sort, then offset/limit, then projection.
// The input slice is never reordered or mutated.
func Apply(records []Record, q Query) []Record {
	out := records
	for _, c := range q.Conditions {
		c := c
		out = pkg.Filter(out, func(r Record) bool { return matches(r, c) })
	}

	if len(q.Orders) > 0 {
		out = append([]Record{}, out...)
		// later keys first, so stable passes leave the first-declared
		// key as the primary criterion
		for i := len(q.Orders) - 1; i >= 0; i-- {
			key := q.Orders[i]
			sort.SliceStable(out, func(a, b int) bool {
				if key.Desc {
					return Less(out[b].Get(key.Field), out[a].Get(key.Field))
				}
				return Less(out[a].Get(key.Field), out[b].Get(key.Field))
			})
		}
	}

	if q.Skip > 0 {
		if q.Skip >= len(out) {
			out = []Record{}
		} else {
			out = out[q.Skip:]
		}
	}
	if q.Take > 0 && q.Take < len(out) {
		out = out[:q.Take]
	}

	if len(q.Fields) > 0 {
		projected := make([]Record, 0, len(out))
		for _, r := range out {
			p := Record{}
			for _, field := range q.Fields {
				if r.Has(field) {
					p.Set(field, r.Get(field))
				}
			}
			projected = append(projected, p)
		}
		out = projected
	}

	return out
}

func matches(r Record, c Condition) bool {
	value := r.Get(c.Field)

	switch c.Operator {
	case OpEq:
		return Equal(value, c.Value)
	case OpNe:
		return !Equal(value, c.Value)
	case OpGt:
		return value != nil && Less(c.Value, value)
	case OpGte:
		return value != nil && !Less(value, c.Value)
	case OpLt:
		return value != nil && Less(value, c.Value)
	case OpLte:
		return value != nil && !Less(c.Value, value)
	case OpIn:
		return member(value, c.Value)
	case OpNotIn:
		return !member(value, c.Value)
	case OpLike, OpILike:
		// both are case-insensitive substring containment
		s, s_ok := value.(string)
		pattern, p_ok := c.Value.(string)
		return s_ok && p_ok && strings.Contains(strings.ToLower(s), strings.ToLower(pattern))
	case OpIsNull:
		return value == nil
	case OpIsNotNull:
		return value != nil
	}
	return false
}

// Equal compares two values, widening numerics first so that an int
// condition matches a json-decoded float64 record value.
func Equal(a, b any) bool {
	if af, a_ok := pkg.NumToFloat(a); a_ok {
		if bf, b_ok := pkg.NumToFloat(b); b_ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Less orders two values: numerically when both are numeric, otherwise by
// string form. Nil sorts as the empty string.
func Less(a, b any) bool {
	if af, a_ok := pkg.NumToFloat(a); a_ok {
		if bf, b_ok := pkg.NumToFloat(b); b_ok {
			return af < bf
		}
	}
	return stringValue(a) < stringValue(b)
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func member(v any, collection any) bool {
	switch list := collection.(type) {
	case []any:
		for _, item := range list {
			if Equal(v, item) {
				return true
			}
		}
	case []string:
		for _, item := range list {
			if Equal(v, item) {
				return true
			}
		}
	case []int:
		for _, item := range list {
			if Equal(v, item) {
				return true
			}
		}
	case []float64:
		for _, item := range list {
			if Equal(v, item) {
				return true
			}
		}
	}
	return false
}

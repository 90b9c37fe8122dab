// Package values provides predicates over loosely-typed configuration
// values as produced by JSON or YAML decoding (string, number, bool,
// list, map, or nil). Equality and presence semantics live here once and
// are shared by the dependency resolver, the field rule evaluator, and
// custom validators.
package values

import (
	"strings"
)

// Kind tags the shape of a decoded configuration value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
	KindOther
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// KindOf returns the Kind of a decoded value.
// JSON decoding yields float64 for all numbers; YAML decoding yields
// int, uint64, or float64 depending on the literal. All are KindNumber.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case []any:
		return KindList
	case map[string]any:
		return KindMap
	default:
		return KindOther
	}
}

// Equal reports structural equality between two decoded values.
// nil equals nil; numbers compare by numeric value regardless of the Go
// type the decoder produced; lists compare element-wise; maps compare
// key-wise. Values of different kinds are never equal.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}

	switch ka {
	case KindNull:
		return true
	case KindString:
		return a.(string) == b.(string)
	case KindBool:
		return a.(bool) == b.(bool)
	case KindNumber:
		return numericEqual(a, b)
	case KindList:
		la, lb := a.([]any), b.([]any)
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	case KindMap:
		ma, mb := a.(map[string]any), b.(map[string]any)
		if len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// NonBlank reports whether a value counts as present for required-field
// checks: non-nil, not a blank string, and not an empty list. Numbers,
// bools, and maps are present whenever non-nil.
func NonBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	default:
		return true
	}
}

// AsMap returns v as a string-keyed map when it has map shape.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsMapList returns v as a list of string-keyed maps. It fails when v is
// not a list or when any element is not a map, reporting the offending
// index in the latter case.
func AsMapList(v any) ([]map[string]any, int, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, -1, false
	}
	maps := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, i, false
		}
		maps = append(maps, m)
	}
	return maps, -1, true
}

// AsInt64 coerces a numeric value to int64. Floats convert only when they
// carry no fractional part.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		if float32(int64(n)) == n {
			return int64(n), true
		}
		return 0, false
	case float64:
		if float64(int64(n)) == n {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// asFloat converts any numeric Go type to float64 for comparison.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// numericEqual compares two numbers by value across decoder-chosen types.
// Integer-to-integer comparisons stay exact; mixed comparisons go through
// float64, which is what both JSON numbers and YAML floats are anyway.
func numericEqual(a, b any) bool {
	ia, aInt := AsInt64(a)
	ib, bInt := AsInt64(b)
	if aInt && bInt {
		return ia == ib
	}
	fa, _ := asFloat(a)
	fb, _ := asFloat(b)
	return fa == fb
}

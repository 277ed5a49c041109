package diff

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"time"
)

// Kind classifies a dynamic value into the shapes the differ knows how to walk.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindMapping
	KindSequence
	KindNumber
	KindString
	KindBool
	KindBytes
	KindTime
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	default:
		return "other"
	}
}

// KindOf returns the kind of a decoded value.
// Maps with string keys and slices of any element type are treated as mappings and sequences.
func KindOf(value any) Kind {
	switch value.(type) {
	case nil:
		return KindNull
	case map[string]any:
		return KindMapping
	case []any:
		return KindSequence
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number, *big.Rat:
		return KindNumber
	case string:
		return KindString
	case bool:
		return KindBool
	case []byte:
		return KindBytes
	case time.Time:
		return KindTime
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindMapping
		}
	case reflect.Slice, reflect.Array:
		return KindSequence
	default:
	}

	return KindOther
}

func asMapping(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}

	rv := reflect.ValueOf(value)
	out := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}

	return out
}

func asSequence(value any) []any {
	if s, ok := value.([]any); ok {
		return s
	}

	rv := reflect.ValueOf(value)
	out := make([]any, rv.Len())

	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out
}

// asInt reports the exact integer held by value, when it holds one that fits an int64.
func asInt(value any) (int64, bool) {
	switch num := value.(type) {
	case int:
		return int64(num), true
	case int8:
		return int64(num), true
	case int16:
		return int64(num), true
	case int32:
		return int64(num), true
	case int64:
		return num, true
	case uint:
		if uint64(num) > math.MaxInt64 {
			return 0, false
		}

		return int64(num), true //nolint:gosec // bounds checked
	case uint8:
		return int64(num), true
	case uint16:
		return int64(num), true
	case uint32:
		return int64(num), true
	case uint64:
		if num > math.MaxInt64 {
			return 0, false
		}

		return int64(num), true //nolint:gosec // bounds checked
	default:
		return 0, false
	}
}

func asFloat(value any) float64 {
	switch num := value.(type) {
	case float32:
		return float64(num)
	case float64:
		return num
	case json.Number:
		f, err := num.Float64()
		if err != nil {
			return math.NaN()
		}

		return f
	case *big.Rat:
		if num == nil {
			return math.NaN()
		}

		f, _ := num.Float64()

		return f
	case uint:
		return float64(num)
	case uint64:
		return float64(num)
	}

	if i, ok := asInt(value); ok {
		return float64(i)
	}

	return math.NaN()
}

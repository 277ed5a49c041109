package diff

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
)

// Op names the kind of divergence recorded by a Change.
type Op string

// Change operations. The names match the keys of the serialized report.
const (
	OpValueChanged Op = "values_changed"
	OpTypeChanged  Op = "type_changes"
	OpKeyAdded     Op = "dictionary_item_added"
	OpKeyRemoved   Op = "dictionary_item_removed"
	OpItemAdded    Op = "iterable_item_added"
	OpItemRemoved  Op = "iterable_item_removed"
)

//nolint:gochecknoglobals // effectively const
var opOrder = []Op{OpValueChanged, OpTypeChanged, OpKeyAdded, OpKeyRemoved, OpItemAdded, OpItemRemoved}

// Change is a single divergence between the reference value (Old) and the candidate value (New).
// Added entries only carry New, removed entries only carry Old.
type Change struct {
	Op   Op
	Path string
	Old  any
	New  any
}

// Report lists every divergence found by Compare. An empty report means the values are equal.
type Report struct {
	Changes []Change
}

// Empty reports whether no divergence was found.
func (r *Report) Empty() bool {
	return r == nil || len(r.Changes) == 0
}

// Len returns the number of changes.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}

	return len(r.Changes)
}

// Only returns the changes recorded for the given operation, in path order.
func (r *Report) Only(op Op) []Change {
	if r == nil {
		return nil
	}

	var out []Change

	for _, change := range r.Changes {
		if change.Op == op {
			out = append(out, change)
		}
	}

	return out
}

func (r *Report) add(change Change) {
	r.Changes = append(r.Changes, change)
}

func (r *Report) sort() {
	slices.SortStableFunc(r.Changes, func(left, right Change) int {
		if c := cmp.Compare(slices.Index(opOrder, left.Op), slices.Index(opOrder, right.Op)); c != 0 {
			return c
		}

		return cmp.Compare(left.Path, right.Path)
	})
}

// String renders one line per change.
func (r *Report) String() string {
	if r.Empty() {
		return ""
	}

	var builder strings.Builder

	for _, change := range r.Changes {
		switch change.Op {
		case OpValueChanged:
			fmt.Fprintf(&builder, "%s %s: %v -> %v\n", change.Op, change.Path, change.Old, change.New)
		case OpTypeChanged:
			fmt.Fprintf(&builder, "%s %s: %v (%s) -> %v (%s)\n",
				change.Op, change.Path, change.Old, typeName(change.Old), change.New, typeName(change.New))
		case OpKeyAdded:
			fmt.Fprintf(&builder, "%s %s\n", change.Op, change.Path)
		case OpKeyRemoved:
			fmt.Fprintf(&builder, "%s %s\n", change.Op, change.Path)
		case OpItemAdded:
			fmt.Fprintf(&builder, "%s %s: %v\n", change.Op, change.Path, change.New)
		case OpItemRemoved:
			fmt.Fprintf(&builder, "%s %s: %v\n", change.Op, change.Path, change.Old)
		}
	}

	return builder.String()
}

// ToMap returns the serializable form of the report:
//
//	{"values_changed": {"root['value']": {"old_value": 1.52, "new_value": 1.57}},
//	 "dictionary_item_added": ["root['x']"],
//	 "iterable_item_removed": {"root[2]": 3}}
func (r *Report) ToMap() map[string]any {
	out := map[string]any{}

	if r.Empty() {
		return out
	}

	for _, change := range r.Changes {
		key := string(change.Op)

		switch change.Op {
		case OpKeyAdded, OpKeyRemoved:
			paths, _ := out[key].([]string)
			out[key] = append(paths, change.Path)
		case OpValueChanged:
			section(out, key)[change.Path] = map[string]any{
				"old_value": jsonSafe(change.Old),
				"new_value": jsonSafe(change.New),
			}
		case OpTypeChanged:
			section(out, key)[change.Path] = map[string]any{
				"old_type":  typeName(change.Old),
				"new_type":  typeName(change.New),
				"old_value": jsonSafe(change.Old),
				"new_value": jsonSafe(change.New),
			}
		case OpItemAdded:
			section(out, key)[change.Path] = jsonSafe(change.New)
		case OpItemRemoved:
			section(out, key)[change.Path] = jsonSafe(change.Old)
		}
	}

	return out
}

// MarshalJSON serializes the report as returned by ToMap.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

func section(out map[string]any, key string) map[string]any {
	sec, ok := out[key].(map[string]any)
	if !ok {
		sec = map[string]any{}
		out[key] = sec
	}

	return sec
}

func typeName(value any) string {
	if value == nil {
		return "null"
	}

	return reflect.TypeOf(value).String()
}

// jsonSafe replaces values encoding/json refuses (NaN, infinities) with their string form.
func jsonSafe(value any) any {
	switch KindOf(value) {
	case KindMapping:
		src := asMapping(value)
		out := make(map[string]any, len(src))

		for key, item := range src {
			out[key] = jsonSafe(item)
		}

		return out
	case KindSequence:
		src := asSequence(value)
		out := make([]any, len(src))

		for i, item := range src {
			out[i] = jsonSafe(item)
		}

		return out
	case KindNumber:
		f := asFloat(value)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}

		return value
	default:
		return value
	}
}

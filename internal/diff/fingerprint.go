package diff

import (
	"math"
	"reflect"
	"slices"
	"sort"
	"time"

	"github.com/gohugoio/hashstructure"
)

type fingerprintEntry struct {
	Key  string
	Hash uint64
}

type fingerprintNode struct {
	Kind     Kind
	Number   float64
	Text     string
	Flag     bool
	Children []uint64
	Fields   []fingerprintEntry
}

// fingerprint hashes a value so that values equal under the tolerance share a hash.
// Sequences hash their sorted item hashes, which makes the fingerprint order-insensitive.
// Different values may share a fingerprint: callers confirm with Equal.
func fingerprint(value any, tolerance Tolerance) uint64 {
	kind := KindOf(value)
	node := fingerprintNode{Kind: kind}

	switch kind {
	case KindMapping:
		fields := asMapping(value)

		node.Fields = make([]fingerprintEntry, 0, len(fields))
		for key, item := range fields {
			node.Fields = append(node.Fields, fingerprintEntry{Key: key, Hash: fingerprint(item, tolerance)})
		}

		sort.Slice(node.Fields, func(i, j int) bool { return node.Fields[i].Key < node.Fields[j].Key })
	case KindSequence:
		items := asSequence(value)

		node.Children = make([]uint64, len(items))
		for idx, item := range items {
			node.Children[idx] = fingerprint(item, tolerance)
		}

		slices.Sort(node.Children)
	case KindNumber:
		node.Number = tolerance.Round(asFloat(value))
		if math.IsNaN(node.Number) {
			node.Number = 0
			node.Text = "NaN"
		}
	case KindString:
		node.Text, _ = value.(string)
	case KindBool:
		node.Flag, _ = value.(bool)
	case KindBytes:
		raw, _ := value.([]byte)
		node.Text = string(raw)
	case KindTime:
		node.Text = timeKey(value)
	case KindNull:
	default:
		node.Text = reflect.TypeOf(value).String()
	}

	hash, err := hashstructure.Hash(node, nil)
	if err != nil {
		// Collapse into a single bucket; Equal still decides.
		return 0
	}

	return hash
}

func timeKey(value any) string {
	instant, _ := value.(time.Time)

	return instant.UTC().Format(time.RFC3339Nano)
}

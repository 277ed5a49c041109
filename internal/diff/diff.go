// Package diff implements a structural comparison of decoded records.
//
// Values are the dynamic shapes decoders produce: mappings keyed by field name, sequences,
// and scalars. Sequences are compared without regard to order, and numbers are compared
// under a Tolerance.
package diff

import (
	"bytes"
	"reflect"
	"strconv"
	"time"
)

const rootPath = "root"

// Compare returns every divergence between reference and candidate under the given tolerance.
// Inputs are never modified, and the result is deterministic.
func Compare(reference, candidate any, tolerance Tolerance) *Report {
	report := &Report{}

	walk(report, rootPath, reference, candidate, tolerance)
	report.sort()

	return report
}

// Equal reports whether Compare would return an empty report, without building one.
func Equal(reference, candidate any, tolerance Tolerance) bool {
	kind := KindOf(reference)
	if kind != KindOf(candidate) {
		return false
	}

	switch kind {
	case KindMapping:
		left, right := asMapping(reference), asMapping(candidate)
		if len(left) != len(right) {
			return false
		}

		for key, value := range left {
			other, ok := right[key]
			if !ok || !Equal(value, other, tolerance) {
				return false
			}
		}

		return true
	case KindSequence:
		left, right := asSequence(reference), asSequence(candidate)
		if len(left) != len(right) {
			return false
		}

		lonelyLeft, lonelyRight := pair(left, right, tolerance)

		return len(lonelyLeft) == 0 && len(lonelyRight) == 0
	default:
		return scalarEqual(kind, reference, candidate, tolerance)
	}
}

func walk(report *Report, path string, reference, candidate any, tolerance Tolerance) {
	kind := KindOf(reference)
	if kind != KindOf(candidate) {
		report.add(Change{Op: OpTypeChanged, Path: path, Old: reference, New: candidate})

		return
	}

	switch kind {
	case KindMapping:
		walkMappings(report, path, asMapping(reference), asMapping(candidate), tolerance)
	case KindSequence:
		walkSequences(report, path, asSequence(reference), asSequence(candidate), tolerance)
	default:
		if !scalarEqual(kind, reference, candidate, tolerance) {
			report.add(Change{Op: OpValueChanged, Path: path, Old: reference, New: candidate})
		}
	}
}

func walkMappings(report *Report, path string, reference, candidate map[string]any, tolerance Tolerance) {
	for key, value := range reference {
		other, ok := candidate[key]
		if !ok {
			report.add(Change{Op: OpKeyRemoved, Path: keyPath(path, key), Old: value})

			continue
		}

		walk(report, keyPath(path, key), value, other, tolerance)
	}

	for key, value := range candidate {
		if _, ok := reference[key]; !ok {
			report.add(Change{Op: OpKeyAdded, Path: keyPath(path, key), New: value})
		}
	}
}

func walkSequences(report *Report, path string, reference, candidate []any, tolerance Tolerance) {
	lonelyReference, lonelyCandidate := pair(reference, candidate, tolerance)

	for _, idx := range lonelyReference {
		report.add(Change{Op: OpItemRemoved, Path: indexPath(path, idx), Old: reference[idx]})
	}

	for _, idx := range lonelyCandidate {
		report.add(Change{Op: OpItemAdded, Path: indexPath(path, idx), New: candidate[idx]})
	}
}

// pair matches every reference item with an equal candidate item and returns the indexes left
// without a counterpart on each side, in ascending order.
// Equality under a tolerance is an equivalence relation, so greedy matching inside a hash
// bucket finds a bijection whenever one exists.
func pair(reference, candidate []any, tolerance Tolerance) ([]int, []int) {
	buckets := make(map[uint64][]int, len(candidate))
	for idx, item := range candidate {
		key := fingerprint(item, tolerance)
		buckets[key] = append(buckets[key], idx)
	}

	var lonelyReference []int

	for idx, item := range reference {
		key := fingerprint(item, tolerance)
		candidates := buckets[key]

		found := -1

		for pos, cidx := range candidates {
			if Equal(item, candidate[cidx], tolerance) {
				found = pos

				break
			}
		}

		if found < 0 {
			lonelyReference = append(lonelyReference, idx)

			continue
		}

		buckets[key] = append(candidates[:found], candidates[found+1:]...)
	}

	matched := make([]bool, len(candidate))
	for idx := range candidate {
		matched[idx] = true
	}

	for _, remaining := range buckets {
		for _, cidx := range remaining {
			matched[cidx] = false
		}
	}

	var lonelyCandidate []int

	for idx, ok := range matched {
		if !ok {
			lonelyCandidate = append(lonelyCandidate, idx)
		}
	}

	return lonelyReference, lonelyCandidate
}

func scalarEqual(kind Kind, reference, candidate any, tolerance Tolerance) bool {
	switch kind {
	case KindNull:
		return true
	case KindNumber:
		return tolerance.numbersEqual(reference, candidate)
	case KindString:
		return reference.(string) == candidate.(string) //nolint:forcetypeassert // guarded by kind
	case KindBool:
		return reference.(bool) == candidate.(bool) //nolint:forcetypeassert // guarded by kind
	case KindBytes:
		return bytes.Equal(reference.([]byte), candidate.([]byte)) //nolint:forcetypeassert // guarded by kind
	case KindTime:
		return reference.(time.Time).Equal(candidate.(time.Time)) //nolint:forcetypeassert // guarded by kind
	default:
		return reflect.DeepEqual(reference, candidate)
	}
}

func keyPath(path, key string) string {
	return path + "['" + key + "']"
}

func indexPath(path string, idx int) string {
	return path + "[" + strconv.Itoa(idx) + "]"
}

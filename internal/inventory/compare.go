package inventory

import (
	"strconv"

	"github.com/farcloser/avrocheck/internal/diff"
)

// Compare checks that two inventories name the same artifacts under the same test identifiers,
// ignoring order. When they do, the reference inventory is returned with a nil report.
// Otherwise the inventory is nil and the report lists every artifact present on one side only.
func Compare(reference, candidate Inventory) (Inventory, *diff.Report) {
	report := diff.Compare(reference.tree(), candidate.tree(), diff.Exact)
	if !report.Empty() {
		return nil, report
	}

	return reference, nil
}

func (inv Inventory) tree() map[string][]string {
	out := make(map[string][]string, len(inv))
	for id, names := range inv {
		out[strconv.FormatUint(uint64(id), 10)] = names
	}

	return out
}

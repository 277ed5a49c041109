// Package inventory groups artifact listings by test identifier and compares the groupings of two clients.
package inventory

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Separator ends the test identifier at the start of an artifact name, as in "17-OVERALL.avro".
const Separator = "-"

// TestID identifies the test case an artifact belongs to.
type TestID uint64

// Unparseable is the bucket collecting artifacts whose name carries no test identifier.
const Unparseable TestID = 0

// ParseTestID extracts the test identifier leading an artifact name.
// It returns false when the name has no separator or the leading segment is not a non-negative integer.
func ParseTestID(name string) (TestID, bool) {
	lead, _, found := strings.Cut(name, Separator)
	if !found || lead == "" {
		return Unparseable, false
	}

	id, err := strconv.ParseUint(lead, 10, 64)
	if err != nil {
		return Unparseable, false
	}

	return TestID(id), true
}

// Inventory maps test identifiers to the artifact names of that test, in first-seen order.
type Inventory map[TestID][]string

// Correlate groups a listing by test identifier in a single pass.
// Names without a test identifier land in the Unparseable bucket. Repeated names are kept once.
func Correlate(listing []string) Inventory {
	inv := Inventory{}
	seen := make(map[string]struct{}, len(listing))

	for _, name := range listing {
		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}

		id, _ := ParseTestID(name)
		inv[id] = append(inv[id], name)
	}

	return inv
}

// IDs returns the test identifiers in ascending order.
func (inv Inventory) IDs() []TestID {
	return slices.Sorted(maps.Keys(inv))
}

// Len returns the number of artifacts across all tests.
func (inv Inventory) Len() int {
	total := 0
	for _, names := range inv {
		total += len(names)
	}

	return total
}

// Only returns an inventory restricted to one test identifier.
func (inv Inventory) Only(id TestID) Inventory {
	names, ok := inv[id]
	if !ok {
		return Inventory{}
	}

	return Inventory{id: slices.Clone(names)}
}

// Filter keeps the names matching a doublestar glob pattern. An empty pattern keeps everything.
func Filter(listing []string, pattern string) ([]string, error) {
	if pattern == "" {
		return listing, nil
	}

	if !doublestar.ValidatePattern(pattern) {
		return nil, &PatternError{Pattern: pattern}
	}

	var kept []string

	for _, name := range listing {
		if ok, _ := doublestar.Match(pattern, name); ok {
			kept = append(kept, name)
		}
	}

	return kept, nil
}

// Pattern returns the glob selecting the artifacts of one test.
func Pattern(id TestID) string {
	return strconv.FormatUint(uint64(id), 10) + Separator + "*"
}

// PatternError reports a malformed glob pattern.
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return "invalid pattern: " + strconv.Quote(e.Pattern)
}

package inventory_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/avrocheck/internal/diff"
	"github.com/farcloser/avrocheck/internal/inventory"
)

func TestParseTestID(t *testing.T) {
	cases := []struct {
		name string
		id   inventory.TestID
		ok   bool
	}{
		{"17-OVERALL.avro", 17, true},
		{"0-PAIR-A.avro", 0, true},
		{"00042-TAG-x.avro", 42, true},
		{"badname.avro", inventory.Unparseable, false},
		{"12345", inventory.Unparseable, false},
		{"-17-OVERALL.avro", inventory.Unparseable, false},
		{"abc-OVERALL.avro", inventory.Unparseable, false},
		{"1.5-OVERALL.avro", inventory.Unparseable, false},
		{"99999999999999999999999-x.avro", inventory.Unparseable, false},
		{"", inventory.Unparseable, false},
	}

	for _, tc := range cases {
		id, ok := inventory.ParseTestID(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.id, id, tc.name)
	}
}

func TestCorrelate(t *testing.T) {
	inv := inventory.Correlate([]string{"17-OVERALL.avro", "17-PAIR-A.avro", "badname.avro"})

	assert.Equal(t, inventory.Inventory{
		17: {"17-OVERALL.avro", "17-PAIR-A.avro"},
		0:  {"badname.avro"},
	}, inv)
	assert.Equal(t, []inventory.TestID{0, 17}, inv.IDs())
	assert.Equal(t, 3, inv.Len())
}

func TestCorrelateKeepsFirstSeenOrderAndDropsDuplicates(t *testing.T) {
	inv := inventory.Correlate([]string{"3-b.avro", "3-a.avro", "3-b.avro", "1-z.avro"})

	assert.Equal(t, []string{"3-b.avro", "3-a.avro"}, inv[3])
	assert.Equal(t, []string{"1-z.avro"}, inv[1])
}

func TestCorrelateLargeListing(t *testing.T) {
	listing := make([]string, 0, 50000)
	for i := range 50000 {
		listing = append(listing, fmt.Sprintf("%d-PAIR-%d.avro", i%100+1, i))
	}

	inv := inventory.Correlate(listing)

	assert.Len(t, inv, 100)
	assert.Equal(t, 50000, inv.Len())
	assert.Len(t, inv[1], 500)
}

func TestOnly(t *testing.T) {
	inv := inventory.Correlate([]string{"1-a.avro", "2-b.avro"})

	assert.Equal(t, inventory.Inventory{2: {"2-b.avro"}}, inv.Only(2))
	assert.Empty(t, inv.Only(3))
}

func TestFilter(t *testing.T) {
	listing := []string{"17-OVERALL.avro", "17-PAIR-A.avro", "170-TAG-B.avro", "jobs/run.log"}

	kept, err := inventory.Filter(listing, inventory.Pattern(17))
	require.NoError(t, err)
	assert.Equal(t, []string{"17-OVERALL.avro", "17-PAIR-A.avro"}, kept)

	kept, err = inventory.Filter(listing, "**/*.log")
	require.NoError(t, err)
	assert.Equal(t, []string{"jobs/run.log"}, kept)

	kept, err = inventory.Filter(listing, "")
	require.NoError(t, err)
	assert.Equal(t, listing, kept)

	_, err = inventory.Filter(listing, "[")

	var patternErr *inventory.PatternError

	assert.ErrorAs(t, err, &patternErr)
}

func TestCompareIdenticalInventories(t *testing.T) {
	reference := inventory.Correlate([]string{"17-OVERALL.avro", "17-PAIR-A.avro", "badname.avro"})
	candidate := inventory.Correlate([]string{"badname.avro", "17-PAIR-A.avro", "17-OVERALL.avro"})

	matched, report := inventory.Compare(reference, candidate)

	assert.Equal(t, 0, report.Len())
	assert.Equal(t, reference, matched)
}

func TestCompareInventoriesDifferingByOneName(t *testing.T) {
	reference := inventory.Correlate([]string{"17-OVERALL.avro", "17-PAIR-A.avro"})
	candidate := inventory.Correlate([]string{"17-OVERALL.avro", "17-PAIR-A.avro", "17-PAIR-B.avro"})

	matched, report := inventory.Compare(reference, candidate)

	assert.Nil(t, matched)
	assert.Equal(t, []diff.Change{
		{Op: diff.OpItemAdded, Path: "root['17'][2]", New: "17-PAIR-B.avro"},
	}, report.Changes)

	_, report = inventory.Compare(candidate, reference)
	assert.Equal(t, []diff.Change{
		{Op: diff.OpItemRemoved, Path: "root['17'][2]", Old: "17-PAIR-B.avro"},
	}, report.Changes)
}

func TestCompareInventoriesMissingTest(t *testing.T) {
	reference := inventory.Correlate([]string{"1-a.avro", "2-b.avro"})
	candidate := inventory.Correlate([]string{"1-a.avro"})

	_, report := inventory.Compare(reference, candidate)

	require.Equal(t, 1, report.Len())
	assert.Equal(t, diff.OpKeyRemoved, report.Changes[0].Op)
	assert.Equal(t, "root['2']", report.Changes[0].Path)
}

func TestCategorize(t *testing.T) {
	cases := map[string]inventory.Category{
		"17-COHORT-PAIR-x.avro":       inventory.CategoryCohort,
		"17-PAIR-A.avro":              inventory.CategoryPair,
		"17-TAG-B.avro":               inventory.CategoryTag,
		"17-lift-manifest.avro":       inventory.CategoryLiftManifest,
		"17-bias.avro":                inventory.CategoryBias,
		"17-prediction-table.avro":    inventory.CategoryPredictionTable,
		"17-customer.avro":            inventory.CategoryCustomer,
		"17-OVERALL.avro":             inventory.CategoryOverall,
		"17-something-else.meta.avro": inventory.CategoryOther,
	}

	for name, category := range cases {
		assert.Equal(t, category, inventory.Categorize(name), name)
	}
}

func TestCount(t *testing.T) {
	tally := inventory.Count([]string{
		"17-PAIR-A.avro",
		"17-PAIR-B.avro",
		"17-OVERALL.avro",
		"17-misc.meta.avro",
		"17-misc.avro",
		"jobs/",
	})

	assert.Equal(t, 5, tally.Total)
	assert.Equal(t, 2, tally.Counts[inventory.CategoryPair])
	assert.Equal(t, 1, tally.Counts[inventory.CategoryOverall])
	assert.Equal(t, []string{"meta", "17-misc", "jobs/"}, tally.Variations)
}

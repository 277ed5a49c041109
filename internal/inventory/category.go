package inventory

import (
	"path"
	"strings"
)

// Category is the kind of artifact, derived from naming conventions.
type Category string

// Artifact categories.
const (
	CategoryPair            Category = "site pairs"
	CategoryTag             Category = "tags"
	CategoryCohort          Category = "cohorts"
	CategoryLiftManifest    Category = "site/store pair lift manifests"
	CategoryBias            Category = "bias manifests"
	CategoryPredictionTable Category = "prediction tables"
	CategoryCustomer        Category = "customer"
	CategoryOverall         Category = "overall"
	CategoryOther           Category = "other"
)

const avroExt = ".avro"

// Categories in display order. Matching follows a different order, see Categorize.
//
//nolint:gochecknoglobals // effectively const
var Categories = []Category{
	CategoryPair,
	CategoryTag,
	CategoryCohort,
	CategoryLiftManifest,
	CategoryBias,
	CategoryPredictionTable,
	CategoryCustomer,
	CategoryOverall,
}

//nolint:gochecknoglobals // effectively const
var categoryMarkers = []struct {
	marker   string
	category Category
}{
	{"COHORT-", CategoryCohort},
	{"PAIR-", CategoryPair},
	{"TAG-", CategoryTag},
	{"lift-manifest", CategoryLiftManifest},
	{"bias", CategoryBias},
	{"prediction-table", CategoryPredictionTable},
	{"customer", CategoryCustomer},
	{"OVERALL", CategoryOverall},
}

// Categorize returns the category of an artifact name. The first matching marker wins.
func Categorize(name string) Category {
	for _, m := range categoryMarkers {
		if strings.Contains(name, m.marker) {
			return m.category
		}
	}

	return CategoryOther
}

// Tally counts the avro artifacts of a listing per category.
type Tally struct {
	Total  int
	Counts map[Category]int
	// Variations holds the extension of uncategorized avro artifacts, and the full name of non-avro entries.
	Variations []string
}

// Count builds the tally of a listing.
func Count(listing []string) Tally {
	tally := Tally{Counts: map[Category]int{}}

	for _, name := range listing {
		if !strings.HasSuffix(name, avroExt) {
			tally.Variations = append(tally.Variations, name)

			continue
		}

		tally.Total++

		category := Categorize(name)
		if category == CategoryOther {
			tally.Variations = append(tally.Variations, variation(name))

			continue
		}

		tally.Counts[category]++
	}

	return tally
}

// variation is the dotted part following the base name, "x.summary.avro" giving "summary".
func variation(name string) string {
	base := path.Base(name)

	parts := strings.Split(base, ".")
	if len(parts) > 2 { //nolint:mnd // base, variation, extension
		return parts[1]
	}

	return strings.TrimSuffix(base, avroExt)
}

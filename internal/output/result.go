// Package output provides shared result serialization for avrocheck output.
package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/farcloser/avrocheck"
	"github.com/farcloser/avrocheck/internal/inventory"
)

// Summary returns the closing line of a regression run.
func Summary(result *avrocheck.Result) string {
	if result.Failed == 0 {
		return fmt.Sprintf("ALL FILES WERE IDENTICAL (%d compared)", result.Attempted)
	}

	return fmt.Sprintf("%d FILES WERE DIFFERENT (of %d compared)", result.Failed, result.Attempted)
}

// ResultToMap converts a regression result into the canonical map structure
// used for JSON serialization. Only failed files are listed.
func ResultToMap(result *avrocheck.Result) map[string]any {
	meta := map[string]any{
		"summary": map[string]any{
			"reference": result.Reference,
			"candidate": result.Candidate,
			"tolerance": result.Tolerance.String(),
			"attempted": result.Attempted,
			"failed":    result.Failed,
			"cached":    result.Cached,
			"elapsed":   result.Elapsed.Truncate(time.Millisecond).String(),
		},
	}

	failures := result.Failures()

	files := make([]any, 0, len(failures))
	for idx := range failures {
		files = append(files, FileResultToMap(&failures[idx]))
	}

	meta["failures"] = files

	if len(result.StagingErrors) > 0 {
		staging := make([]any, 0, len(result.StagingErrors))
		for _, err := range result.StagingErrors {
			staging = append(staging, err.Error())
		}

		meta["staging_errors"] = staging
	}

	return meta
}

// FileResultToMap converts one file comparison to a map.
func FileResultToMap(result *avrocheck.FileResult) map[string]any {
	meta := map[string]any{
		"test":        uint64(result.TestID),
		"file":        result.Artifact,
		"identical":   !result.Failed(),
		"duration_ms": result.Duration.Milliseconds(),
	}

	if result.Err != nil {
		meta["error"] = result.Err.Error()
	}

	if result.Report != nil && !result.Report.Empty() {
		meta["diff"] = result.Report.ToMap()
	}

	return meta
}

// TallyToMap converts a category tally to a map, categories in display order.
func TallyToMap(tally inventory.Tally) map[string]any {
	counts := make([]any, 0, len(inventory.Categories))
	for _, category := range inventory.Categories {
		counts = append(counts, fmt.Sprintf("%d %s", tally.Counts[category], category))
	}

	meta := map[string]any{
		"total":      tally.Total,
		"categories": counts,
	}

	if len(tally.Variations) > 0 {
		meta["variations"] = tally.Variations
	}

	return meta
}

// InventoryToMap converts an inventory to a map keyed by test identifier.
func InventoryToMap(inv inventory.Inventory) map[string]any {
	meta := make(map[string]any, len(inv))

	for _, id := range inv.IDs() {
		meta[strconv.FormatUint(uint64(id), 10)] = inv[id]
	}

	return meta
}

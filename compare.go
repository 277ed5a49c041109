package avrocheck

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/farcloser/avrocheck/internal/diff"
	"github.com/farcloser/avrocheck/internal/inventory"
)

// PairLocator resolves the local copies of an artifact on both sides.
type PairLocator interface {
	ReferencePath(client, artifact string) string
	CandidatePath(client, artifact string) string
}

// Batch describes a set of pairwise comparisons over a matched inventory.
type Batch struct {
	Reference string
	Candidate string
	// Inventory must already be known to match on both sides.
	Inventory inventory.Inventory
	// TestID restricts the batch to one test when set.
	TestID    *inventory.TestID
	Locator   PairLocator
	Decode    DecodeFunc
	Tolerance diff.Tolerance
	// Workers caps concurrency. Zero dispatches every comparison at once.
	Workers  int
	Reporter Reporter
}

type comparison struct {
	id       inventory.TestID
	artifact string
}

// RunComparisons compares every artifact of the batch, one worker per artifact, and waits for all of them.
// Decode failures and worker crashes are counted as failed comparisons and never stop the batch.
func RunComparisons(batch *Batch) *Result {
	start := time.Now()
	jobs := batch.comparisons()

	slog.Debug("avrocheck.RunComparisons", "comparisons", len(jobs), "workers", batch.Workers, "stage", "start")

	// Every worker sends exactly one result, so the buffer never blocks a worker.
	results := make(chan FileResult, len(jobs))

	workers := pool.New()
	if batch.Workers > 0 {
		workers = workers.WithMaxGoroutines(batch.Workers)
	}

	for _, job := range jobs {
		workers.Go(func() {
			result := batch.compare(job)
			batch.report(&result)
			results <- result
		})
	}

	workers.Wait()
	close(results)

	aggregate := &Result{
		Reference: batch.Reference,
		Candidate: batch.Candidate,
		Tolerance: batch.Tolerance,
		Files:     make([]FileResult, 0, len(jobs)),
	}

	for result := range results {
		aggregate.Attempted++

		if result.Failed() {
			aggregate.Failed++
		}

		aggregate.Files = append(aggregate.Files, result)
	}

	slices.SortFunc(aggregate.Files, func(left, right FileResult) int {
		if c := cmp.Compare(left.TestID, right.TestID); c != 0 {
			return c
		}

		return cmp.Compare(left.Artifact, right.Artifact)
	})

	aggregate.Elapsed = time.Since(start)

	slog.Debug("avrocheck.RunComparisons", "attempted", aggregate.Attempted, "failed", aggregate.Failed, "stage", "done")

	return aggregate
}

func (b *Batch) comparisons() []comparison {
	var jobs []comparison

	for _, id := range b.Inventory.IDs() {
		if b.TestID != nil && *b.TestID != id {
			continue
		}

		for _, artifact := range b.Inventory[id] {
			jobs = append(jobs, comparison{id: id, artifact: artifact})
		}
	}

	return jobs
}

func (b *Batch) compare(job comparison) FileResult {
	start := time.Now()
	result := FileResult{TestID: job.id, Artifact: job.artifact}

	var catcher panics.Catcher

	catcher.Try(func() {
		reference, err := b.Decode(b.Locator.ReferencePath(b.Reference, job.artifact))
		if err != nil {
			result.Err = fmt.Errorf("%w: reference %s: %w", ErrDecode, job.artifact, err)

			return
		}

		candidate, err := b.Decode(b.Locator.CandidatePath(b.Candidate, job.artifact))
		if err != nil {
			result.Err = fmt.Errorf("%w: candidate %s: %w", ErrDecode, job.artifact, err)

			return
		}

		result.Report = diff.Compare(reference, candidate, b.Tolerance)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		result.Report = nil
		result.Err = fmt.Errorf("%w: %s: %w", ErrWorkerCrash, job.artifact, recovered.AsError())
	}

	result.Duration = time.Since(start)

	if result.Err != nil {
		slog.Error("comparison failed", "file", job.artifact, "test", job.id, "error", result.Err)
	} else {
		slog.Debug("comparison done", "file", job.artifact, "identical", result.Report.Empty())
	}

	return result
}

func (b *Batch) report(result *FileResult) {
	if b.Reporter == nil {
		return
	}

	var catcher panics.Catcher

	catcher.Try(func() { b.Reporter.Report(*result) })

	if recovered := catcher.Recovered(); recovered != nil {
		slog.Error("reporter crashed", "file", result.Artifact, "error", recovered.AsError())
	}
}

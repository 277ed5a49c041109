// Package avrocheck compares the avro artifacts of a candidate client against a reference client.
package avrocheck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/farcloser/avrocheck/internal/inventory"
	"github.com/farcloser/avrocheck/internal/stage"
)

// Run performs a regression run: it lists and correlates both clients, verifies they name the same
// artifacts, stages both sides and compares every matched artifact.
//
// An inventory mismatch returns an *InventoryMismatchError before anything is staged or compared.
// Listing failures always return an error wrapping ErrTransport; staging failures follow
// opts.OnTransportFailure. Differences between files never produce an error: they are counted in the Result.
func Run(ctx context.Context, opts *Options, storage Storage, decode DecodeFunc) (*Result, error) {
	start := time.Now()

	if err := opts.validate(); err != nil {
		return nil, err
	}

	matched, err := Correlate(ctx, opts, storage)
	if err != nil {
		return nil, err
	}

	workspace, err := stage.Open(opts.WorkDir, opts.KeepStaged)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := workspace.Close(); closeErr != nil {
			slog.Warn("cleaning staged files", "error", closeErr)
		}
	}()

	cached := workspace.Cached(opts.Reference, opts.Candidate)

	var stagingErrors []error

	if cached {
		slog.Info("reusing staged copies", "reference", opts.Reference, "candidate", opts.Candidate)
	} else {
		stagingErrors, err = stageClients(ctx, opts, storage, workspace)
		if err != nil {
			return nil, err
		}
	}

	result := RunComparisons(&Batch{
		Reference: opts.Reference,
		Candidate: opts.Candidate,
		Inventory: matched,
		TestID:    opts.TestID,
		Locator:   workspace,
		Decode:    decode,
		Tolerance: opts.Tolerance,
		Workers:   opts.Workers,
		Reporter:  opts.Reporter,
	})

	result.StagingErrors = stagingErrors
	result.Cached = cached
	result.Elapsed = time.Since(start)

	return result, nil
}

// Correlate lists both clients and returns the matched inventory, or an *InventoryMismatchError.
// With a test filter and FilterScopeNarrow, only the filtered test has to match.
func Correlate(ctx context.Context, opts *Options, storage Storage) (inventory.Inventory, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	reference, err := listInventory(ctx, storage, opts.Reference)
	if err != nil {
		return nil, err
	}

	candidate, err := listInventory(ctx, storage, opts.Candidate)
	if err != nil {
		return nil, err
	}

	if opts.TestID != nil && opts.FilterScope != FilterScopeFull {
		reference = reference.Only(*opts.TestID)
		candidate = candidate.Only(*opts.TestID)
	}

	matched, report := inventory.Compare(reference, candidate)
	if report != nil {
		return nil, &InventoryMismatchError{Reference: opts.Reference, Candidate: opts.Candidate, Report: report}
	}

	if opts.TestID != nil && len(matched[*opts.TestID]) == 0 {
		slog.Warn("no artifact for test", "test", *opts.TestID)
	}

	slog.Debug("avrocheck.Correlate", "tests", len(matched), "artifacts", matched.Len())

	return matched, nil
}

func listInventory(ctx context.Context, storage Storage, client string) (inventory.Inventory, error) {
	listing, err := storage.List(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrTransport, client, err)
	}

	return inventory.Correlate(listing), nil
}

func stageClients(ctx context.Context, opts *Options, storage Storage, workspace *stage.Workspace) ([]error, error) {
	if err := workspace.Reset(); err != nil {
		return nil, err
	}

	pattern := ""
	if opts.TestID != nil {
		pattern = inventory.Pattern(*opts.TestID)
	}

	sides := []struct {
		client string
		dir    string
	}{
		{opts.Reference, workspace.ReferenceRoot()},
		{opts.Candidate, workspace.CandidateRoot()},
	}

	var tolerated []error

	for _, side := range sides {
		slog.Info("downloading avros", "client", side.client, "dir", side.dir)

		err := storage.Stage(ctx, side.client, side.dir, pattern)
		if err == nil {
			continue
		}

		err = fmt.Errorf("%w: staging %s: %w", ErrTransport, side.client, err)
		if opts.OnTransportFailure != TransportContinue {
			return nil, err
		}

		slog.Warn("continuing without a complete copy", "client", side.client, "error", err)

		tolerated = append(tolerated, err)
	}

	return tolerated, nil
}

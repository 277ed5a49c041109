package avrocheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farcloser/avrocheck/internal/diff"
	"github.com/farcloser/avrocheck/internal/inventory"
)

var (
	// ErrInventoryMismatch is wrapped by InventoryMismatchError.
	ErrInventoryMismatch = errors.New("avro filenames are not identical")
	// ErrTransport wraps listing and staging failures.
	ErrTransport = errors.New("storage transport failure")
	// ErrDecode marks a comparison that failed because a file could not be decoded.
	ErrDecode = errors.New("cannot decode avro file")
	// ErrWorkerCrash marks a comparison whose worker panicked.
	ErrWorkerCrash = errors.New("comparison worker crashed")

	errMissingClient = errors.New("reference and candidate clients are required")
	errFilterScope   = errors.New("invalid filter scope (want: narrow, full)")
	errTransport     = errors.New("invalid transport policy (want: abort, continue)")
)

// FilterScope decides which part of the inventories must match when a test filter is given.
type FilterScope string

const (
	// FilterScopeNarrow only requires the filtered test to match on both sides.
	FilterScopeNarrow FilterScope = "narrow"
	// FilterScopeFull requires the complete inventories to match, filter or not.
	FilterScopeFull FilterScope = "full"
)

// ParseFilterScope converts a scope name.
func ParseFilterScope(name string) (FilterScope, error) {
	switch FilterScope(name) {
	case "", FilterScopeNarrow:
		return FilterScopeNarrow, nil
	case FilterScopeFull:
		return FilterScopeFull, nil
	default:
		return "", fmt.Errorf("%w: %q", errFilterScope, name)
	}
}

// TransportPolicy decides what a staging failure does to the run.
type TransportPolicy string

const (
	// TransportAbort stops the run on the first staging failure.
	TransportAbort TransportPolicy = "abort"
	// TransportContinue logs staging failures and compares whatever was staged.
	// Artifacts that could not be staged then fail to decode, and count as failed comparisons.
	TransportContinue TransportPolicy = "continue"
)

// ParseTransportPolicy converts a policy name.
func ParseTransportPolicy(name string) (TransportPolicy, error) {
	switch TransportPolicy(name) {
	case "", TransportAbort:
		return TransportAbort, nil
	case TransportContinue:
		return TransportContinue, nil
	default:
		return "", fmt.Errorf("%w: %q", errTransport, name)
	}
}

// Storage lists and stages the artifacts of a client.
type Storage interface {
	// List returns the artifact names of a client, relative to the client prefix.
	List(ctx context.Context, client string) ([]string, error)
	// Stage copies the artifacts of a client matching pattern (every artifact if empty) into dir/<client>/.
	Stage(ctx context.Context, client, dir, pattern string) error
}

// DecodeFunc decodes a local artifact file into its records.
type DecodeFunc func(path string) ([]any, error)

// Reporter receives every comparison result as soon as it is known.
// Report is called concurrently from the comparison workers, in no particular order.
type Reporter interface {
	Report(result FileResult)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(result FileResult)

// Report calls f.
func (f ReporterFunc) Report(result FileResult) {
	f(result)
}

// Options configures a regression run.
type Options struct {
	// Reference is the known-good client.
	Reference string
	// Candidate is the client validated against the reference.
	Candidate string
	// TestID restricts the comparison to one test when set.
	TestID *inventory.TestID
	// Tolerance applies to numbers found in the records (default: round to the nearest integer).
	Tolerance diff.Tolerance
	// Workers caps the number of concurrent comparisons. Zero runs one worker per artifact.
	Workers int
	// FilterScope applies when TestID is set (default: narrow).
	FilterScope FilterScope
	// OnTransportFailure applies to staging failures (default: abort). Listing failures always abort.
	OnTransportFailure TransportPolicy
	// WorkDir is the root of the staging workspace.
	WorkDir string
	// KeepStaged retains the staged copies after the run, and reuses them when present.
	KeepStaged bool
	// Reporter, when set, receives each file result as it completes.
	Reporter Reporter
}

func (o *Options) validate() error {
	if o.Reference == "" || o.Candidate == "" {
		return errMissingClient
	}

	if _, err := ParseFilterScope(string(o.FilterScope)); err != nil {
		return err
	}

	if _, err := ParseTransportPolicy(string(o.OnTransportFailure)); err != nil {
		return err
	}

	return nil
}

// InventoryMismatchError reports reference and candidate inventories naming different artifacts.
type InventoryMismatchError struct {
	Reference string
	Candidate string
	Report    *diff.Report
}

func (e *InventoryMismatchError) Error() string {
	return fmt.Sprintf("%s: %s vs %s: %d differences", ErrInventoryMismatch, e.Reference, e.Candidate, e.Report.Len())
}

func (e *InventoryMismatchError) Unwrap() error {
	return ErrInventoryMismatch
}

// FileResult is the outcome of comparing one artifact between the two clients.
type FileResult struct {
	TestID   inventory.TestID
	Artifact string
	// Report is nil when the comparison did not complete.
	Report *diff.Report
	// Err is set when a file could not be decoded or the worker crashed.
	Err      error
	Duration time.Duration
}

// Failed reports whether the artifact differs or could not be compared.
func (r *FileResult) Failed() bool {
	return r.Err != nil || !r.Report.Empty()
}

// Result aggregates a batch of comparisons.
type Result struct {
	Reference string
	Candidate string
	Tolerance diff.Tolerance
	// Attempted counts every dispatched comparison.
	Attempted int
	// Failed counts comparisons with differences, decode failures or crashes.
	Failed int
	// Files holds every file result, ordered by test identifier then artifact name.
	Files []FileResult
	// StagingErrors lists staging failures tolerated under TransportContinue.
	StagingErrors []error
	// Cached is true when retained staged copies were reused.
	Cached  bool
	Elapsed time.Duration
}

// Failures returns the failed file results.
func (r *Result) Failures() []FileResult {
	var out []FileResult

	for i := range r.Files {
		if r.Files[i].Failed() {
			out = append(out, r.Files[i])
		}
	}

	return out
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/farcloser/avrocheck"
)

// consoleReporter prints a dot on progress for every identical file, and the diff of every failing one on out.
// Workers call Report concurrently.
type consoleReporter struct {
	mu       sync.Mutex
	out      io.Writer
	progress io.Writer
	dots     int
}

func newConsoleReporter(out, progress io.Writer) *consoleReporter {
	return &consoleReporter{out: out, progress: progress}
}

func (r *consoleReporter) Report(result avrocheck.FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !result.Failed() {
		fmt.Fprint(r.progress, ".")
		r.dots++

		return
	}

	r.breakLine()

	if result.Err != nil {
		fmt.Fprintf(r.out, "COULD NOT COMPARE %s: %v\n", result.Artifact, result.Err)

		return
	}

	fmt.Fprintf(r.out, "There are DIFFERENCES in %s:\n", result.Artifact)

	if err := printJSON(r.out, result.Report); err != nil {
		fmt.Fprintln(r.out, result.Report.String())
	}
}

// finish ends the progress line once every worker is done.
func (r *consoleReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakLine()
}

func (r *consoleReporter) breakLine() {
	if r.dots > 0 {
		fmt.Fprintln(r.progress)
		r.dots = 0
	}
}

func printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	return nil
}

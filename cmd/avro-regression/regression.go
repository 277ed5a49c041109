//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/avrocheck"
	"github.com/farcloser/avrocheck/internal/avro"
	"github.com/farcloser/avrocheck/internal/config"
	"github.com/farcloser/avrocheck/internal/diff"
	"github.com/farcloser/avrocheck/internal/integration/gsutil"
	"github.com/farcloser/avrocheck/internal/inventory"
	"github.com/farcloser/avrocheck/internal/logger"
	"github.com/farcloser/avrocheck/internal/output"
)

const (
	minArgs = 2
	maxArgs = 3
)

var (
	errInvalidArgCount = errors.New("expected <reference> <candidate> [test-id]")
	errInvalidTestID   = errors.New("test id must be a non-negative integer")
)

func regressionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file providing defaults",
		},
		&cli.StringFlag{
			Name:  "bucket",
			Usage: "Bucket location holding one prefix per client (default: " + config.DefaultBucket + ")",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Usage:   "Maximum concurrent comparisons, 0 for one per artifact",
		},
		&cli.StringFlag{
			Name:    "tolerance",
			Aliases: []string{"t"},
			Usage:   "Numeric tolerance: integer, one-decimal, two-decimals, exact (default: integer)",
		},
		&cli.StringFlag{
			Name:  "filter-scope",
			Usage: "With a test id, require only that test (narrow) or every test (full) to name the same artifacts",
		},
		&cli.StringFlag{
			Name:  "on-transport-failure",
			Usage: "When a client cannot be staged: abort the run, or continue with what was staged",
		},
		&cli.StringFlag{
			Name:  "work-dir",
			Usage: "Directory holding the staged copies (default: current directory)",
		},
		&cli.BoolFlag{
			Name:  "keep-staged",
			Usage: "Keep staged copies after the run and reuse them on the next one",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Also print the full result in this format: console, json, markdown",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}

func runRegression(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < minArgs || cmd.NArg() > maxArgs {
		return fmt.Errorf("%w: got %d arguments", errInvalidArgCount, cmd.NArg())
	}

	logger.Setup(cmd.Bool("debug"))

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}

	bucket, err := gsutil.New(cfg.Bucket)
	if err != nil {
		return err
	}

	bucket.Heartbeat = os.Stderr

	reporter := newConsoleReporter(os.Stdout, os.Stderr)
	opts.Reporter = reporter

	fmt.Fprintf(os.Stderr, "Comparing %s against %s in %s (tolerance: %s)\n",
		opts.Candidate, opts.Reference, bucket.Location(), opts.Tolerance)

	result, err := avrocheck.Run(ctx, opts, bucket, avro.Decode)

	var mismatch *avrocheck.InventoryMismatchError
	if errors.As(err, &mismatch) {
		fmt.Fprintln(os.Stdout, "AVRO FILENAMES ARE NOT IDENTICAL")

		if printErr := printJSON(os.Stdout, mismatch.Report); printErr != nil {
			return printErr
		}

		return err
	}

	if err != nil {
		return err
	}

	reporter.finish()

	for _, stagingErr := range result.StagingErrors {
		fmt.Fprintf(os.Stderr, "Staging incomplete: %v\n", stagingErr)
	}

	fmt.Fprintln(os.Stdout, output.Summary(result))

	if formatName := cmd.String("format"); formatName != "" {
		formatter, err := format.GetFormatter(formatName)
		if err != nil {
			return err
		}

		data := &format.Data{
			Object: opts.Candidate,
			Meta:   output.ResultToMap(result),
		}

		if err = formatter.PrintAll([]*format.Data{data}, os.Stdout); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Done in %s\n", result.Elapsed.Truncate(time.Millisecond))

	return nil
}

func resolveConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if cmd.IsSet("bucket") {
		cfg.Bucket = cmd.String("bucket")
	}

	if cmd.IsSet("workers") {
		cfg.Workers = cmd.Int("workers")
	}

	if cmd.IsSet("tolerance") {
		cfg.Tolerance = cmd.String("tolerance")
	}

	if cmd.IsSet("filter-scope") {
		cfg.FilterScope = cmd.String("filter-scope")
	}

	if cmd.IsSet("on-transport-failure") {
		cfg.OnTransportFailure = cmd.String("on-transport-failure")
	}

	if cmd.IsSet("work-dir") {
		cfg.WorkDir = cmd.String("work-dir")
	}

	if cmd.IsSet("keep-staged") {
		cfg.KeepStaged = cmd.Bool("keep-staged")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func buildOptions(cmd *cli.Command, cfg *config.Config) (*avrocheck.Options, error) {
	tolerance, err := diff.ParseTolerance(cfg.Tolerance)
	if err != nil {
		return nil, err
	}

	scope, err := avrocheck.ParseFilterScope(cfg.FilterScope)
	if err != nil {
		return nil, err
	}

	policy, err := avrocheck.ParseTransportPolicy(cfg.OnTransportFailure)
	if err != nil {
		return nil, err
	}

	opts := &avrocheck.Options{
		Reference:          cmd.Args().Get(0),
		Candidate:          cmd.Args().Get(1),
		Tolerance:          tolerance,
		Workers:            cfg.Workers,
		FilterScope:        scope,
		OnTransportFailure: policy,
		WorkDir:            cfg.WorkDir,
		KeepStaged:         cfg.KeepStaged,
	}

	if cmd.NArg() == maxArgs {
		id, err := strconv.ParseUint(cmd.Args().Get(2), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidTestID, cmd.Args().Get(2))
		}

		testID := inventory.TestID(id)
		opts.TestID = &testID
	}

	return opts, nil
}

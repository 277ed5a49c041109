//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/avrocheck/internal/avro"
	"github.com/farcloser/avrocheck/internal/diff"
)

func dumpAvroCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump-avro",
		Usage:     "Print the records of an artifact as JSON",
		ArgsUsage: "<client> <artifact> | --local <file>",
		Flags: commonFlags(
			&cli.StringFlag{
				Name:    "local",
				Aliases: []string{"l"},
				Usage:   "Decode a local avro file instead of fetching one from the bucket",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			local := cmd.String("local")

			switch {
			case local != "" && cmd.NArg() != 0:
				return fmt.Errorf("%w: --local takes no argument", errInvalidArgCount)
			case local == "" && cmd.NArg() != 2: //nolint:mnd // client and artifact
				return fmt.Errorf("%w: expected <client> <artifact>, got %d arguments", errInvalidArgCount, cmd.NArg())
			}

			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			path := local
			if path == "" {
				dir, err := os.MkdirTemp("", "avrocheck-dump-")
				if err != nil {
					return err
				}
				defer os.RemoveAll(dir)

				bucket, err := openBucket(cfg)
				if err != nil {
					return err
				}

				if path, err = bucket.Fetch(ctx, cmd.Args().Get(0), cmd.Args().Get(1), dir); err != nil {
					return err
				}
			}

			records, err := avro.Load(path)
			if err != nil {
				return err
			}

			if err = printJSON(os.Stdout, records); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%d records\n", len(records))

			return nil
		},
	}
}

func diffAvrosCommand() *cli.Command {
	return &cli.Command{
		Name:      "diff-avros",
		Usage:     "Compare two local files (avro containers or JSON dumps)",
		ArgsUsage: "<reference> <candidate>",
		Flags: commonFlags(
			&cli.StringFlag{
				Name:    "tolerance",
				Aliases: []string{"t"},
				Usage:   "Numeric tolerance: integer, one-decimal, two-decimals, exact (default: integer)",
			},
		),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 { //nolint:mnd // reference and candidate
				return fmt.Errorf("%w: expected <reference> <candidate>, got %d arguments", errInvalidArgCount, cmd.NArg())
			}

			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			if cmd.IsSet("tolerance") {
				cfg.Tolerance = cmd.String("tolerance")
			}

			tolerance, err := diff.ParseTolerance(cfg.Tolerance)
			if err != nil {
				return err
			}

			reference, err := avro.Load(cmd.Args().Get(0))
			if err != nil {
				return err
			}

			candidate, err := avro.Load(cmd.Args().Get(1))
			if err != nil {
				return err
			}

			report := diff.Compare(reference, candidate, tolerance)

			slog.Debug("diff-avros", "tolerance", tolerance, "changes", report.Len())

			if report.Empty() {
				fmt.Fprintln(os.Stdout, "IDENTICAL")

				return nil
			}

			return printJSON(os.Stdout, report)
		},
	}
}

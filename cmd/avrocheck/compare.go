//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/avrocheck"
)

func compareClientsCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare-clients",
		Usage:     "Check that two clients hold the same artifacts, without comparing their content",
		ArgsUsage: "[reference] <candidate>",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 1 || cmd.NArg() > 2 {
				return fmt.Errorf("%w: expected [reference] <candidate>, got %d arguments", errInvalidArgCount, cmd.NArg())
			}

			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			reference, candidate := cfg.ReferenceClient, cmd.Args().Get(0)
			if cmd.NArg() == 2 { //nolint:mnd // reference and candidate
				reference, candidate = cmd.Args().Get(0), cmd.Args().Get(1)
			}

			bucket, err := openBucket(cfg)
			if err != nil {
				return err
			}

			matched, err := avrocheck.Correlate(ctx, &avrocheck.Options{
				Reference: reference,
				Candidate: candidate,
			}, bucket)

			var mismatch *avrocheck.InventoryMismatchError
			if errors.As(err, &mismatch) {
				if printErr := printJSON(os.Stdout, mismatch.Report); printErr != nil {
					return printErr
				}

				return err
			}

			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, "IDENTICAL")
			fmt.Fprintf(os.Stderr, "%d artifacts in %d tests\n", matched.Len(), len(matched))

			return nil
		},
	}
}

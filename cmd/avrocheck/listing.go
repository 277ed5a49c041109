//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/avrocheck/internal/inventory"
	"github.com/farcloser/avrocheck/internal/output"
)

func listClientsCommand() *cli.Command {
	return &cli.Command{
		Name:  "list-clients",
		Usage: "List the clients present in the bucket",
		Flags: commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 0 {
				return fmt.Errorf("%w: list-clients takes no argument", errInvalidArgCount)
			}

			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			bucket, err := openBucket(cfg)
			if err != nil {
				return err
			}

			clients, err := bucket.Clients(ctx)
			if err != nil {
				return err
			}

			for _, client := range clients {
				fmt.Fprintln(os.Stdout, client)
			}

			return nil
		},
	}
}

func listAvrosCommand() *cli.Command {
	return &cli.Command{
		Name:      "list-avros",
		Usage:     "List the artifacts of a client, with a count per category",
		ArgsUsage: "<client>",
		Flags:     commonFlags(formatFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: expected a client name, got %d arguments", errInvalidArgCount, cmd.NArg())
			}

			client := cmd.Args().First()

			listing, err := listClient(ctx, cmd, client)
			if err != nil {
				return err
			}

			meta := output.TallyToMap(inventory.Count(listing))
			meta["artifacts"] = listing

			return printData(cmd.String("format"), &format.Data{Object: client, Meta: meta})
		},
	}
}

func listTestsCommand() *cli.Command {
	return &cli.Command{
		Name:      "list-tests",
		Usage:     "List the artifacts of a client grouped by test identifier",
		ArgsUsage: "<client>",
		Flags: commonFlags(
			formatFlag(),
			&cli.StringFlag{
				Name:    "match",
				Aliases: []string{"m"},
				Usage:   "Only keep artifacts matching this glob (e.g., \"17-*\", \"*-PAIR-*\")",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: expected a client name, got %d arguments", errInvalidArgCount, cmd.NArg())
			}

			client := cmd.Args().First()

			listing, err := listClient(ctx, cmd, client)
			if err != nil {
				return err
			}

			if pattern := cmd.String("match"); pattern != "" {
				if listing, err = inventory.Filter(listing, pattern); err != nil {
					return err
				}
			}

			return printData(cmd.String("format"), &format.Data{
				Object: client,
				Meta:   output.InventoryToMap(inventory.Correlate(listing)),
			})
		},
	}
}

func listClient(ctx context.Context, cmd *cli.Command, client string) ([]string, error) {
	cfg, err := setup(cmd)
	if err != nil {
		return nil, err
	}

	bucket, err := openBucket(cfg)
	if err != nil {
		return nil, err
	}

	return bucket.List(ctx, client)
}

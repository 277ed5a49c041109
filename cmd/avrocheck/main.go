package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/avrocheck/version"
)

func main() {
	ctx := context.Background()

	appl := &cli.Command{
		Name:    version.Name(),
		Usage:   "Inspect and compare the avro artifacts of calculation clients",
		Version: version.Version() + " " + version.Commit(),
		Commands: []*cli.Command{
			listClientsCommand(),
			listAvrosCommand(),
			listTestsCommand(),
			compareClientsCommand(),
			dumpAvroCommand(),
			diffAvrosCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}

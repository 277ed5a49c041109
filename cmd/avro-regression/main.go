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
		Name:      "avro-regression",
		Usage:     "Compare every avro artifact of a candidate client against a reference client",
		ArgsUsage: "<reference> <candidate> [test-id]",
		Version:   version.Version() + " " + version.Commit(),
		Flags:     regressionFlags(),
		Action:    runRegression,
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}

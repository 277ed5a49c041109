//nolint:wrapcheck
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/avrocheck/internal/config"
	"github.com/farcloser/avrocheck/internal/integration/gsutil"
	"github.com/farcloser/avrocheck/internal/logger"
)

var errInvalidArgCount = errors.New("unexpected number of arguments")

// commonFlags are accepted by every command.
func commonFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file providing defaults",
		},
		&cli.StringFlag{
			Name:  "bucket",
			Usage: "Bucket location holding one prefix per client (default: " + config.DefaultBucket + ")",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}, extra...)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: console, json, markdown",
		Value:   "console",
	}
}

// setup installs logging and resolves the configuration, flags taking precedence over the file.
func setup(cmd *cli.Command) (*config.Config, error) {
	logger.Setup(cmd.Bool("debug"))

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

	return cfg, nil
}

func openBucket(cfg *config.Config) (*gsutil.Bucket, error) {
	return gsutil.New(cfg.Bucket)
}

func printData(formatName string, data ...*format.Data) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	return formatter.PrintAll(data, os.Stdout)
}

func printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	return nil
}

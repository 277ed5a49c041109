// Package config loads the optional YAML configuration shared by the avrocheck tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/avrocheck"
	"github.com/farcloser/avrocheck/internal/diff"
)

// Default values.
const (
	DefaultBucket          = "gs://md_stag_graphdata/"
	DefaultReferenceClient = "ftrcalcsteststandard"
	DefaultWorkDir         = "."
	DefaultFilterScope     = string(avrocheck.FilterScopeNarrow)
	DefaultTransport       = string(avrocheck.TransportAbort)
)

var errNegativeWorkers = errors.New("workers must be zero (unbounded) or positive")

// Config holds the settings a flag may override.
type Config struct {
	Bucket             string `yaml:"bucket"`
	ReferenceClient    string `yaml:"reference_client"`
	WorkDir            string `yaml:"work_dir"`
	KeepStaged         bool   `yaml:"keep_staged"`
	Workers            int    `yaml:"workers"`
	Tolerance          string `yaml:"tolerance"`
	FilterScope        string `yaml:"filter_scope"`
	OnTransportFailure string `yaml:"on_transport_failure"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// Load reads a YAML configuration file, applies defaults and validates it.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user provided configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err = decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 0 {
		errs = append(errs, errNegativeWorkers)
	}

	if _, err := diff.ParseTolerance(c.Tolerance); err != nil {
		errs = append(errs, err)
	}

	if _, err := avrocheck.ParseFilterScope(c.FilterScope); err != nil {
		errs = append(errs, fmt.Errorf("filter_scope: %w", err))
	}

	if _, err := avrocheck.ParseTransportPolicy(c.OnTransportFailure); err != nil {
		errs = append(errs, fmt.Errorf("on_transport_failure: %w", err))
	}

	return errors.Join(errs...)
}

func applyDefaults(cfg *Config) {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}

	if cfg.ReferenceClient == "" {
		cfg.ReferenceClient = DefaultReferenceClient
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}

	if cfg.Tolerance == "" {
		cfg.Tolerance = diff.RoundInteger.String()
	}

	if cfg.FilterScope == "" {
		cfg.FilterScope = DefaultFilterScope
	}

	if cfg.OnTransportFailure == "" {
		cfg.OnTransportFailure = DefaultTransport
	}
}

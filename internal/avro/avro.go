// Package avro decodes artifact files into records.
package avro

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/farcloser/primordium/fault"
	"github.com/linkedin/goavro/v2"
)

var errNotAnArray = errors.New("expected a JSON array of records")

// Decode reads every record of an avro object container file.
func Decode(path string) ([]any, error) {
	slog.Debug("avro.Decode", "path", path, "stage", "start")

	file, err := os.Open(path) //nolint:gosec // staged artifact paths
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrReadFailure, path, err)
	}
	defer file.Close()

	reader, err := goavro.NewOCFReader(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrReadFailure, path, err)
	}

	records := []any{}

	for reader.Scan() {
		record, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %w", fault.ErrReadFailure, path, len(records), err)
		}

		records = append(records, record)
	}

	if err = reader.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrReadFailure, path, err)
	}

	slog.Debug("avro.Decode", "path", path, "stage", "done", "records", len(records))

	return records, nil
}

// DecodeJSON reads a JSON array of records, as written by a dump.
// Numbers are kept as json.Number so that integers survive unchanged.
func DecodeJSON(path string) ([]any, error) {
	file, err := os.Open(path) //nolint:gosec // user provided dump files
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrReadFailure, path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(bufio.NewReader(file))
	decoder.UseNumber()

	var payload any
	if err = decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrInvalidJSON, path, err)
	}

	records, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrInvalidJSON, path, errNotAnArray)
	}

	return records, nil
}

// Load decodes a file according to its extension: JSON dumps for ".json", avro containers otherwise.
func Load(path string) ([]any, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return DecodeJSON(path)
	}

	return Decode(path)
}

// Package gsutil lists and copies client artifacts by driving the gsutil binary.
package gsutil

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/avrocheck/internal/integration/binary"
)

var (
	errEmptyLocation = errors.New("bucket location is empty")
	errTarget        = errors.New("cannot create staging target")
)

// Bucket is a cloud storage location holding one prefix per client, such as "gs://bucket/".
type Bucket struct {
	location string
	// Heartbeat receives a dot every heartbeatEvery lines of gsutil output. Nil disables it.
	Heartbeat io.Writer
}

// New returns a Bucket for the given location. A trailing slash is added when missing.
func New(location string) (*Bucket, error) {
	if location == "" {
		return nil, errEmptyLocation
	}

	if !strings.HasSuffix(location, "/") {
		location += "/"
	}

	return &Bucket{location: location}, nil
}

// Location returns the bucket location, with its trailing slash.
func (b *Bucket) Location() string {
	return b.location
}

// Clients lists the client prefixes of the bucket.
func (b *Bucket) Clients(ctx context.Context) ([]string, error) {
	var clients []string

	err := b.run(ctx, listTimeout, []string{"ls", b.location}, false, func(line string) {
		client := strings.TrimSuffix(strings.TrimPrefix(line, b.location), "/")
		if client != "" {
			clients = append(clients, client)
		}
	})

	return clients, err
}

// List returns the artifact names stored under a client, relative to the client prefix.
// Empty lines, summary lines and sub-prefixes are dropped.
func (b *Bucket) List(ctx context.Context, client string) ([]string, error) {
	slog.Debug("gsutil.List", "client", client, "stage", "start")

	prefix := b.location + client + "/"

	var names []string

	err := b.run(ctx, listTimeout, []string{"ls", prefix}, false, func(line string) {
		if strings.HasPrefix(line, totalPrefix) || strings.HasSuffix(line, "/") {
			return
		}

		if artifact := strings.TrimPrefix(line, prefix); artifact != "" {
			names = append(names, artifact)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", prefix, err)
	}

	slog.Debug("gsutil.List", "client", client, "stage", "done", "count", len(names))

	return names, nil
}

// Stage copies the artifacts of a client into dir/<client>/.
// A non-empty pattern restricts the copy to the matching artifact names, such as "17-*".
func (b *Bucket) Stage(ctx context.Context, client, dir, pattern string) error {
	slog.Debug("gsutil.Stage", "client", client, "dir", dir, "pattern", pattern, "stage", "start")

	target := filepath.Join(dir, client)
	if err := os.MkdirAll(target, 0o755); err != nil { //nolint:mnd // staging directories
		return fmt.Errorf("%w: %s: %w", errTarget, target, err)
	}

	args := []string{"-m", "cp", "-r", b.location + client, dir}
	if pattern != "" {
		args = []string{"-m", "cp", b.location + client + "/" + pattern, target + string(filepath.Separator)}
	}

	if err := b.run(ctx, copyTimeout, args, true, nil); err != nil {
		return fmt.Errorf("staging %s: %w", client, err)
	}

	slog.Debug("gsutil.Stage", "client", client, "stage", "done")

	return nil
}

// Fetch copies a single artifact of a client into dir and returns its local path.
func (b *Bucket) Fetch(ctx context.Context, client, artifact, dir string) (string, error) {
	source := b.location + client + "/" + artifact

	if err := b.run(ctx, copyTimeout, []string{"cp", source, dir}, true, nil); err != nil {
		return "", fmt.Errorf("fetching %s: %w", source, err)
	}

	return filepath.Join(dir, filepath.Base(artifact)), nil
}

// run executes gsutil and feeds every trimmed line of its output to onLine.
// gsutil reports copy progress on stderr, so progress commands stream stderr instead of stdout.
func (b *Bucket) run(
	ctx context.Context,
	timeout time.Duration,
	args []string,
	progress bool,
	onLine func(line string),
) error {
	gsutilPath, err := binary.Require(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, gsutilPath, args...)

	var captured bytes.Buffer

	var pipe io.ReadCloser

	if progress {
		cmd.Stdout = &captured
		pipe, err = cmd.StderrPipe()
	} else {
		cmd.Stderr = &captured
		pipe, err = cmd.StdoutPipe()
	}

	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrCommandFailure, err)
	}

	if err = cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", fault.ErrCommandFailure, err)
	}

	beat := &heartbeat{out: b.Heartbeat, every: heartbeatEvery}
	lastLine := ""

	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		beat.tick(line)

		if line != "" {
			lastLine = line
		}

		if onLine != nil && line != "" {
			onLine(line)
		}
	}

	if err = cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		detail := captured.String()
		if progress {
			detail = lastLine
		}

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, strings.TrimSpace(detail), err)
	}

	return nil
}

type heartbeat struct {
	out   io.Writer
	every int
	count int
}

func (h *heartbeat) tick(line string) {
	h.count++

	slog.Debug("gsutil", "line", line)

	if h.out != nil && h.count%h.every == 0 {
		fmt.Fprint(h.out, ".")
	}
}

// Package stage manages the local copies of the artifacts compared during a run.
//
// A workspace holds two fixed namespaces, one per side of the comparison. Copies are only
// removed at run boundaries, and an exclusive lock keeps concurrent runs out of the same root.
package stage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	// ReferenceDir holds the reference client copies.
	ReferenceDir = "reference"
	// CandidateDir holds the candidate client copies.
	CandidateDir = "changed"

	lockName = ".avrocheck.lock"
	dirMode  = 0o755
)

// ErrLocked is returned when another run holds the workspace.
var ErrLocked = errors.New("staging workspace is in use by another run")

// Workspace is the staging area of one run.
type Workspace struct {
	root string
	keep bool
	lock *flock.Flock
}

// Open locks the workspace rooted at root, creating it when needed.
// When keep is true, staged copies survive Close and may be reused by the next run.
func Open(root string, keep bool) (*Workspace, error) {
	if err := os.MkdirAll(root, dirMode); err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", root, err)
	}

	lock := flock.New(filepath.Join(root, lockName))

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking workspace %s: %w", root, err)
	}

	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}

	return &Workspace{root: root, keep: keep, lock: lock}, nil
}

// ReferenceRoot is the directory the reference client is staged into.
func (w *Workspace) ReferenceRoot() string {
	return filepath.Join(w.root, ReferenceDir)
}

// CandidateRoot is the directory the candidate client is staged into.
func (w *Workspace) CandidateRoot() string {
	return filepath.Join(w.root, CandidateDir)
}

// ReferencePath is the local copy of a reference artifact.
func (w *Workspace) ReferencePath(client, artifact string) string {
	return filepath.Join(w.ReferenceRoot(), client, filepath.FromSlash(artifact))
}

// CandidatePath is the local copy of a candidate artifact.
func (w *Workspace) CandidatePath(client, artifact string) string {
	return filepath.Join(w.CandidateRoot(), client, filepath.FromSlash(artifact))
}

// Cached reports whether retained copies of both clients can be reused instead of staging again.
func (w *Workspace) Cached(reference, candidate string) bool {
	if !w.keep {
		return false
	}

	return isDir(filepath.Join(w.ReferenceRoot(), reference)) && isDir(filepath.Join(w.CandidateRoot(), candidate))
}

// Reset removes every staged copy and recreates both namespaces empty.
func (w *Workspace) Reset() error {
	for _, dir := range []string{w.ReferenceRoot(), w.CandidateRoot()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}

		if err := os.MkdirAll(dir, dirMode); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	return nil
}

// Close removes the staged copies unless they are kept, then releases the lock.
func (w *Workspace) Close() error {
	var errs []error

	if !w.keep {
		for _, dir := range []string{w.ReferenceRoot(), w.CandidateRoot()} {
			if err := os.RemoveAll(dir); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := w.lock.Unlock(); err != nil {
		errs = append(errs, err)
	}

	slog.Debug("stage.Close", "root", w.root, "kept", w.keep)

	return errors.Join(errs...)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

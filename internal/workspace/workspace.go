// Package workspace describes the on-disk tree shared by the media stages.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by Lock when another run holds the workspace.
var ErrLocked = errors.New("workspace is locked by another run")

// Layout locates the original downloads, manual/corrected overrides and
// per-size thumbnail directories under one root.
type Layout struct {
	Root      string
	Originals string
	Overrides string
	Thumbs    string
}

func New(root string) Layout {
	return Layout{
		Root:      root,
		Originals: filepath.Join(root, "original"),
		Overrides: filepath.Join(root, "overrides"),
		Thumbs:    filepath.Join(root, "thumbs"),
	}
}

func (l Layout) ThumbDir(size int) string {
	return filepath.Join(l.Thumbs, strconv.Itoa(size))
}

// Ensure creates every directory of the layout, including one per size.
func (l Layout) Ensure(sizes []int) error {
	const op = "workspace.Ensure"

	dirs := []string{l.Originals, l.Overrides, l.Thumbs}
	for _, size := range sizes {
		dirs = append(dirs, l.ThumbDir(size))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Lock takes an exclusive, non-blocking lock on the workspace. The returned
// func releases it.
func (l Layout) Lock() (func() error, error) {
	const op = "workspace.Lock"

	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	fl := flock.New(filepath.Join(l.Root, ".ingest.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrLocked)
	}
	return fl.Unlock, nil
}

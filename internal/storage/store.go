// Package storage persists the study ledger.
//
// Every backend implements Store. Save replaces the whole persisted ledger
// atomically, so a crash during Save leaves either the previous or the new
// state on disk, never a partial one.
package storage

import (
	"context"
	"errors"

	"studytracker/internal/core"
)

var (
	// ErrNotFound means nothing has been saved yet.
	ErrNotFound = errors.New("storage: ledger not found")
	// ErrCorrupt means the stored ledger could not be parsed.
	ErrCorrupt = errors.New("storage: ledger corrupt")
	// ErrIO wraps read and write failures of the underlying medium.
	ErrIO = errors.New("storage: i/o failure")
)

// Store loads and saves a complete ledger.
type Store interface {
	// Load returns the stored ledger, normalized. It fails with ErrNotFound,
	// ErrCorrupt or ErrIO.
	Load(ctx context.Context) (*core.Ledger, error)

	// Save replaces the stored ledger. Failures wrap ErrIO.
	Save(ctx context.Context, l *core.Ledger) error
}

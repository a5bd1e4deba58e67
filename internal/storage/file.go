package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"studytracker/internal/core"
)

// FileStore keeps the ledger as a JSON document in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (*core.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}

	l, err := core.DecodeLedger(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}
	if raw := l.RawKeys(); len(raw) > 0 {
		slog.InfoContext(ctx, "Keeping stored entries with non-numeric week",
			"path", s.path,
			"entries", raw)
	}
	return l, nil
}

// Save implements Store. The document is written to a temporary file in the
// same directory, synced, then renamed over the previous one.
func (s *FileStore) Save(ctx context.Context, l *core.Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode ledger: %w", ErrIO, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create data directory: %w", ErrIO, err)
	}
	if err := renameio.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, s.path, err)
	}

	slog.DebugContext(ctx, "Ledger saved to file", "path", s.path, "bytes", len(data)+1)
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"studytracker/internal/core"
)

// MemoryStore keeps the encoded ledger in memory. Nothing survives the
// process; it backs tests and the "memory" backend.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore returns a store seeded with an encoded ledger. An empty seed
// behaves like a store that was never written.
func NewMemoryStore(seed []byte) *MemoryStore {
	return &MemoryStore{data: append([]byte(nil), seed...)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context) (*core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrNotFound
	}
	l, err := core.DecodeLedger(s.data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return l, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, l *core.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("%w: encode ledger: %w", ErrIO, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Bytes returns a copy of the last saved document.
func (s *MemoryStore) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

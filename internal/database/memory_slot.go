package database

import (
	"context"
	"sync"
)

// MemorySlot keeps the snapshot in memory. It is used by tests and by
// callers that do not want anything written to disk.
type MemorySlot struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load returns a copy of the stored snapshot
func (s *MemorySlot) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

// Save stores a copy of data, or fails with the error set by FailWith
func (s *MemorySlot) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.data = append([]byte(nil), data...)
	s.saves++
	return nil
}

// FailWith makes every following Save return err. Pass nil to recover.
func (s *MemorySlot) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Saves returns the number of successful writes
func (s *MemorySlot) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

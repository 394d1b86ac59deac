package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot keeps the snapshot in a single JSON file
type FileSlot struct {
	path string
}

// NewFileSlot creates a slot backed by the file at path
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Path returns the location of the snapshot file
func (s *FileSlot) Path() string {
	return s.path
}

// Load reads the snapshot file
func (s *FileSlot) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Save replaces the snapshot file. The data is written to a temp file
// next to the target and renamed over it, so readers never see a torn file.
func (s *FileSlot) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

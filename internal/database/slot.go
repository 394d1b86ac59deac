package database

import "context"

// SnapshotKey is the fixed key the application state is stored under
const SnapshotKey = "smart-exam-prep-data"

// Slot is a place where a whole-state snapshot is kept.
// Load returns nil data and a nil error when nothing was saved yet.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SnapshotRepository stores the snapshot as a single row of the snapshots table
type SnapshotRepository struct {
	db  *sqlx.DB
	key string
}

// NewSnapshotRepository creates a repository for the snapshot stored under key
func NewSnapshotRepository(db *sqlx.DB, key string) *SnapshotRepository {
	if key == "" {
		key = SnapshotKey
	}
	return &SnapshotRepository{db: db, key: key}
}

// Load returns the stored snapshot
func (r *SnapshotRepository) Load(ctx context.Context) ([]byte, error) {
	var data string
	query := r.db.Rebind("SELECT data FROM snapshots WHERE slot_key = ?")

	err := r.db.GetContext(ctx, &data, query, r.key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return []byte(data), nil
}

// Save replaces the stored snapshot inside a transaction
func (r *SnapshotRepository) Save(ctx context.Context, data []byte) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO snapshots (slot_key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slot_key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`)

	if _, err := tx.ExecContext(ctx, query, r.key, string(data), time.Now().UTC()); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

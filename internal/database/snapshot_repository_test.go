package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepository_SQLite(t *testing.T) {
	db, err := Connect(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepository(db, "")
	ctx := context.Background()

	data, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data, "empty table should load as no snapshot")

	require.NoError(t, repo.Save(ctx, []byte(`{"v":1}`)))
	require.NoError(t, repo.Save(ctx, []byte(`{"v":2}`)))

	data, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))

	var rows int
	require.NoError(t, db.Get(&rows, "SELECT COUNT(*) FROM snapshots"))
	assert.Equal(t, 1, rows, "saves should upsert a single row")
}

func TestSnapshotRepository_KeysAreIndependent(t *testing.T) {
	db, err := Connect(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	first := NewSnapshotRepository(db, "first")
	second := NewSnapshotRepository(db, "second")

	require.NoError(t, first.Save(ctx, []byte("1")))

	data, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect("oracle", "whatever")
	assert.Error(t, err)
}

func TestMemorySlot_FailWith(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()

	require.NoError(t, slot.Save(ctx, []byte("a")))
	boom := errors.New("disk full")
	slot.FailWith(boom)
	assert.ErrorIs(t, slot.Save(ctx, []byte("b")), boom)

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, 1, slot.Saves())
}

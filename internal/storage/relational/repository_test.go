package relational

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/core"
	"financas/internal/storage"
	"financas/internal/storage/storagetest"
)

func TestConformanceSQLite(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		repo, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"), slog.Default())
		require.NoError(t, err)
		return repo
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestSameInstantKeepsInsertOrder(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	var ids []string
	for _, amount := range []string{"1", "2", "3"} {
		id, err := repo.Add(ctx, storagetest.Tx(7, core.Expense, amount, storagetest.Base))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	got, err := repo.List(ctx, storage.Filter{Owner: 7})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{got[0].ID, got[1].ID, got[2].ID})

	n, err := repo.DeleteRange(ctx, 7, core.DeleteLast, storagetest.Base)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := repo.List(ctx, storage.Filter{Owner: 7})
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, ids[1], left[0].ID)
	assert.Equal(t, ids[0], left[1].ID)
}

func TestNewIDSortsByCreation(t *testing.T) {
	prev := ""
	for i := 0; i < 100; i++ {
		id := newID()
		assert.Greater(t, id, prev)
		prev = id
	}
}

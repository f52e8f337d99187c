package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), Config{
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestStore_GetCursor_Unset(t *testing.T) {
	store := setupTestStore(t)

	id, ok, err := store.GetCursor(context.Background(), "frontpage")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestStore_SetGetCursor(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetCursor(ctx, "frontpage", "item-42"))

	id, ok, err := store.GetCursor(ctx, "frontpage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "item-42", id)

	// advancing overwrites the previous value
	require.NoError(t, store.SetCursor(ctx, "frontpage", "item-43"))
	id, ok, err = store.GetCursor(ctx, "frontpage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "item-43", id)
}

func TestStore_CursorsAreIndependent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetCursor(ctx, "jobs", "job-1"))
	require.NoError(t, store.SetCursor(ctx, "frontpage", "post-9"))

	id, ok, err := store.GetCursor(ctx, "jobs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "job-1", id)

	id, ok, err = store.GetCursor(ctx, "frontpage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "post-9", id)

	all, err := store.Cursors(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"jobs": "job-1", "frontpage": "post-9"}, all)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dsn := fmt.Sprintf("file:%s/cursors.db?cache=shared&mode=rwc", t.TempDir())
	ctx := context.Background()

	store, err := New(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, store.SetCursor(ctx, "frontpage", "item-1"))
	require.NoError(t, store.Close())

	// reopen and read back, simulates a process restart
	store, err = New(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck // test cleanup

	id, ok, err := store.GetCursor(ctx, "frontpage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "item-1", id)
}

func TestStore_ConcurrentDistinctKeys(t *testing.T) {
	dsn := fmt.Sprintf("file:%s/concurrent.db?cache=shared&mode=rwc", t.TempDir())
	ctx := context.Background()

	store, err := New(ctx, Config{DSN: dsn, MaxOpenConns: 10})
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck // test cleanup

	const feeds = 10
	const writes = 20

	var wg sync.WaitGroup
	errs := make(chan error, feeds*writes)
	for i := 0; i < feeds; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			feed := fmt.Sprintf("feed-%d", n)
			for j := 0; j < writes; j++ {
				if err := store.SetCursor(ctx, feed, fmt.Sprintf("entry-%d", j)); err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent write failed: %v", err)
	}

	for i := 0; i < feeds; i++ {
		id, ok, err := store.GetCursor(ctx, fmt.Sprintf("feed-%d", i))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("entry-%d", writes-1), id)
	}
}

func TestStore_Ping(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

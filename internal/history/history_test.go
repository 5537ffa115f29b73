package history

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchboard/internal/db"
	"switchboard/internal/memory"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate())
	return NewStore(database)
}

func TestStore_AppendAndLoad(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	require.NoError(t, store.Append(ctx, "s1", memory.Turn{User: "hello", Assistant: "hi there"}))
	require.NoError(t, store.Append(ctx, "s1", memory.Turn{User: "how are you?", Assistant: "fine"}))

	window, err := store.Load(ctx, "s1", 10)
	require.NoError(t, err)
	require.Equal(t, 2, window.Len())

	turns := window.Turns()
	assert.Equal(t, "hello", turns[0].User)
	assert.Equal(t, "fine", turns[1].Assistant)
}

func TestStore_LoadMostRecent(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append(ctx, "s1", memory.Turn{
			User:      fmt.Sprintf("q%d", i),
			Assistant: fmt.Sprintf("a%d", i),
		}))
	}

	window, err := store.Load(ctx, "s1", 2)
	require.NoError(t, err)
	require.Equal(t, 2, window.Len())

	turns := window.Turns()
	assert.Equal(t, "q4", turns[0].User)
	assert.Equal(t, "q5", turns[1].User)
}

func TestStore_LoadEmptySession(t *testing.T) {
	store := testStore(t)
	window, err := store.Load(context.Background(), "missing", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, window.Len())
}

func TestStore_SessionsIsolated(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	require.NoError(t, store.Append(ctx, "a", memory.Turn{User: "ua", Assistant: "aa"}))
	require.NoError(t, store.Append(ctx, "b", memory.Turn{User: "ub", Assistant: "ab"}))

	window, err := store.Load(ctx, "a", 10)
	require.NoError(t, err)
	require.Equal(t, 1, window.Len())
	assert.Equal(t, "ua", window.Turns()[0].User)
}

func TestStore_ConcurrentAppendsSameSession(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Append(ctx, "shared", memory.Turn{
				User:      fmt.Sprintf("q%d", i),
				Assistant: fmt.Sprintf("a%d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	window, err := store.Load(ctx, "shared", n)
	require.NoError(t, err)
	assert.Equal(t, n, window.Len())
}

func TestStore_SessionLockStable(t *testing.T) {
	store := testStore(t)
	assert.Same(t, store.sessionLock("abc"), store.sessionLock("abc"),
		"one session always serializes on the same stripe")
}

func TestStore_EnsureSessionAndListing(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	require.NoError(t, store.EnsureSession(ctx, "s1", "research"))
	require.NoError(t, store.Append(ctx, "s1", memory.Turn{User: "q", Assistant: "a"}))
	require.NoError(t, store.EnsureSession(ctx, "s1", "code"))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, "code", sessions[0].Agent, "the last serving agent wins")

	turns, err := store.Turns(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "q", turns[0].User)
}

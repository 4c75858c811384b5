package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strubloid/neotalent-sub000/internal/models"
)

func TestMemoryStore_Create(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	user, err := store.Create(ctx, "TestUser", "salt:hash", "Test User")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "testuser", user.Username, "username is lowercased before persistence")
	assert.False(t, user.CreatedAt.IsZero())

	t.Run("duplicate_username", func(t *testing.T) {
		_, err := store.Create(ctx, "testuser", "salt:hash", "Other")
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	})

	t.Run("duplicate_differs_only_in_case", func(t *testing.T) {
		_, err := store.Create(ctx, "TESTUSER", "salt:hash", "Other")
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	})
}

func TestMemoryStore_Lookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, "alice", "salt:hash", "Alice")
	require.NoError(t, err)

	byName, err := store.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byID, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = store.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetByID(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SearchHistoryCap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	user, err := store.Create(ctx, "bob", "salt:hash", "Bob")
	require.NoError(t, err)

	for i := 0; i < 11; i++ {
		_, err := store.AddSearchEntry(ctx, user.ID, models.SearchEntry{
			SearchID: fmt.Sprintf("search-%d", i),
			Query:    fmt.Sprintf("food %d", i),
			Summary:  "summary",
		})
		require.NoError(t, err)
	}

	history, err := store.GetSearchHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, models.MaxSearchHistoryEntries)
	assert.Equal(t, "search-10", history[0].SearchID, "most recent first")
	assert.Equal(t, "search-1", history[9].SearchID, "oldest beyond the cap evicted")
}

func TestMemoryStore_SearchHistoryDedup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	user, err := store.Create(ctx, "carol", "salt:hash", "Carol")
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.AddSearchEntry(ctx, user.ID, models.SearchEntry{
			SearchID: id, Query: id, Summary: id,
		})
		require.NoError(t, err)
	}

	history, err := store.AddSearchEntry(ctx, user.ID, models.SearchEntry{
		SearchID: "a", Query: "a again", Summary: "updated",
	})
	require.NoError(t, err)

	require.Len(t, history, 3, "re-adding an id does not grow the history")
	assert.Equal(t, "a", history[0].SearchID, "existing id moves to the front")
	assert.Equal(t, "a again", history[0].Query)
}

func TestMemoryStore_ClearSearchHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	user, err := store.Create(ctx, "dave", "salt:hash", "Dave")
	require.NoError(t, err)

	_, err = store.AddSearchEntry(ctx, user.ID, models.SearchEntry{SearchID: "s", Query: "q", Summary: "m"})
	require.NoError(t, err)

	require.NoError(t, store.ClearSearchHistory(ctx, user.ID))

	history, err := store.GetSearchHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.ErrorIs(t, store.ClearSearchHistory(ctx, "missing"), ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	user, err := store.Create(ctx, "eve", "salt:hash", "Eve")
	require.NoError(t, err)

	got, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	got.Nickname = "mutated"

	again, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eve", again.Nickname)
}

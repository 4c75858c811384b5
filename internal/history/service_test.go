package history

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strubloid/neotalent-sub000/internal/models"
)

func resultWithCalories(cal int) models.NutritionResult {
	return models.NutritionResult{TotalCalories: cal, Breakdown: []models.BreakdownItem{}}
}

func TestSaveSearch_GeneratesSessionAndSearchIDs(t *testing.T) {
	svc := NewService(0)

	sessionID, record := svc.SaveSearch("", "an apple", resultWithCalories(95))
	assert.True(t, strings.HasPrefix(sessionID, "session_"))
	assert.True(t, strings.HasPrefix(record.SearchID, "search_"))
	assert.False(t, record.CreatedAt.IsZero())

	// Reusing the session id appends to the same session.
	again, record2 := svc.SaveSearch(sessionID, "a banana", resultWithCalories(105))
	assert.Equal(t, sessionID, again)
	assert.NotEqual(t, record.SearchID, record2.SearchID)

	page := svc.GetSearchHistory(sessionID, 1, 10)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "a banana", page.Items[0].Query, "most recent first")
}

func TestSaveSearch_CapEvictsOldest(t *testing.T) {
	svc := NewService(3)
	sessionID := ""
	for i := 0; i < 5; i++ {
		sessionID, _ = svc.SaveSearch(sessionID, fmt.Sprintf("food %d", i), resultWithCalories(i))
	}

	page := svc.GetSearchHistory(sessionID, 1, 10)
	require.Equal(t, 3, page.Total)
	assert.Equal(t, "food 4", page.Items[0].Query)
	assert.Equal(t, "food 2", page.Items[2].Query)
}

func TestGetSearchHistory_Pagination(t *testing.T) {
	svc := NewService(50)
	sessionID := ""
	for i := 0; i < 25; i++ {
		sessionID, _ = svc.SaveSearch(sessionID, fmt.Sprintf("food %d", i), resultWithCalories(i))
	}

	page := svc.GetSearchHistory(sessionID, 2, 10)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 10)
	assert.Equal(t, "food 14", page.Items[0].Query)

	t.Run("page_clamped_to_one", func(t *testing.T) {
		page := svc.GetSearchHistory(sessionID, 0, 10)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("per_page_clamped_to_fifty", func(t *testing.T) {
		page := svc.GetSearchHistory(sessionID, 1, 500)
		assert.Equal(t, 50, page.PerPage)
	})

	t.Run("page_beyond_end_is_empty", func(t *testing.T) {
		page := svc.GetSearchHistory(sessionID, 99, 10)
		assert.Empty(t, page.Items)
		assert.Equal(t, 25, page.Total)
	})

	t.Run("unknown_session_is_empty", func(t *testing.T) {
		page := svc.GetSearchHistory("session_unknown", 1, 10)
		assert.Empty(t, page.Items)
		assert.Zero(t, page.Total)
	})
}

func TestGetRecentSearches(t *testing.T) {
	svc := NewService(50)
	longQuery := strings.Repeat("very long query ", 10)
	sessionID, _ := svc.SaveSearch("", longQuery, resultWithCalories(420))
	sessionID, _ = svc.SaveSearch(sessionID, "short", resultWithCalories(100))

	crumbs := svc.GetRecentSearches(sessionID, 5)
	require.Len(t, crumbs, 2)
	assert.Equal(t, "short", crumbs[0].Query)
	assert.Equal(t, 100, crumbs[0].Calories)
	assert.Len(t, crumbs[1].Query, 50, "breadcrumb query text truncated")
}

func TestGetRecentSearches_TruncatesByRunes(t *testing.T) {
	svc := NewService(50)
	query := strings.Repeat("味噌汁とご飯", 20)
	sessionID, _ := svc.SaveSearch("", query, resultWithCalories(180))

	crumbs := svc.GetRecentSearches(sessionID, 1)
	require.Len(t, crumbs, 1)
	assert.True(t, utf8.ValidString(crumbs[0].Query))
	assert.Equal(t, 50, utf8.RuneCountInString(crumbs[0].Query))
}

func TestGetSearchByID(t *testing.T) {
	svc := NewService(50)
	sessionID, record := svc.SaveSearch("", "an apple", resultWithCalories(95))

	got, err := svc.GetSearchByID(sessionID, record.SearchID)
	require.NoError(t, err)
	assert.Equal(t, "an apple", got.Query)
	assert.Equal(t, 95, got.Result.TotalCalories)

	_, err = svc.GetSearchByID(sessionID, "search_missing")
	assert.ErrorIs(t, err, ErrSearchNotFound)

	_, err = svc.GetSearchByID("session_missing", record.SearchID)
	assert.ErrorIs(t, err, ErrSearchNotFound)
}

func TestClearHistory(t *testing.T) {
	svc := NewService(50)
	sessionID, _ := svc.SaveSearch("", "an apple", resultWithCalories(95))

	svc.ClearHistory(sessionID)
	page := svc.GetSearchHistory(sessionID, 1, 10)
	assert.Zero(t, page.Total)

	// Clearing an unknown session is a no-op.
	svc.ClearHistory("session_missing")
}

func TestGetStats(t *testing.T) {
	svc := NewService(50)
	assert.Zero(t, svc.GetStats().TotalSessions)

	s1, _ := svc.SaveSearch("", "a", resultWithCalories(100))
	svc.SaveSearch(s1, "b", resultWithCalories(200))
	svc.SaveSearch("", "c", resultWithCalories(300))

	stats := svc.GetStats()
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 3, stats.TotalSearches)
	assert.InDelta(t, 300.0, stats.AvgCaloriesPerSession, 0.001)
}

// Package history keeps an ephemeral, session-keyed record of past
// nutrition searches. Everything lives in process memory and is lost on
// restart; durable history belongs to the user account instead.
package history

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/strubloid/neotalent-sub000/internal/models"
)

// DefaultMaxPerSession caps how many searches one session retains.
const DefaultMaxPerSession = 50

// breadcrumbQueryLength bounds the query text shown in breadcrumbs.
const breadcrumbQueryLength = 50

// ErrSearchNotFound indicates no search matches the id within the session.
var ErrSearchNotFound = errors.New("search not found")

// Record is one stored search with its full result.
type Record struct {
	SearchID  string                 `json:"searchId"`
	Query     string                 `json:"query"`
	Result    models.NutritionResult `json:"result"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Breadcrumb is a condensed recent-search summary for quick re-display.
type Breadcrumb struct {
	SearchID  string    `json:"searchId"`
	Query     string    `json:"query"`
	Calories  int       `json:"calories"`
	CreatedAt time.Time `json:"createdAt"`
}

// Page is one page of a session's search history.
type Page struct {
	Items      []Record `json:"items"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	Total      int      `json:"total"`
	TotalPages int      `json:"totalPages"`
}

// Stats aggregates usage across all live sessions.
type Stats struct {
	TotalSessions         int     `json:"totalSessions"`
	TotalSearches         int     `json:"totalSearches"`
	AvgCaloriesPerSession float64 `json:"avgCaloriesPerSession"`
}

// Service is the in-memory search history store. Safe for concurrent
// use; a multi-instance deployment needs a shared backend instead.
type Service struct {
	mu            sync.RWMutex
	sessions      map[string][]Record
	maxPerSession int
}

// NewService creates a history service. maxPerSession <= 0 uses
// DefaultMaxPerSession.
func NewService(maxPerSession int) *Service {
	if maxPerSession <= 0 {
		maxPerSession = DefaultMaxPerSession
	}
	return &Service{
		sessions:      make(map[string][]Record),
		maxPerSession: maxPerSession,
	}
}

// SaveSearch prepends a search to the session's history, evicting the
// oldest entry beyond the cap. An empty sessionID starts a new session;
// the (possibly generated) session id is returned with the record.
func (s *Service) SaveSearch(sessionID, query string, result models.NutritionResult) (string, Record) {
	if sessionID == "" {
		sessionID = newID("session")
	}

	record := Record{
		SearchID:  newID("search"),
		Query:     query,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := append([]Record{record}, s.sessions[sessionID]...)
	if len(records) > s.maxPerSession {
		records = records[:s.maxPerSession]
	}
	s.sessions[sessionID] = records

	return sessionID, record
}

// GetSearchHistory returns one page of the session's history,
// most-recent-first. page is clamped to >= 1 and perPage to 1..50.
func (s *Service) GetSearchHistory(sessionID string, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 50 {
		perPage = 50
	}

	s.mu.RLock()
	records := s.sessions[sessionID]
	total := len(records)

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := append([]Record(nil), records[start:end]...)
	s.mu.RUnlock()

	totalPages := (total + perPage - 1) / perPage
	return Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// GetRecentSearches returns up to limit breadcrumbs for the session,
// query text truncated for display.
func (s *Service) GetRecentSearches(sessionID string, limit int) []Breadcrumb {
	if limit < 1 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.sessions[sessionID]
	if limit > len(records) {
		limit = len(records)
	}

	crumbs := make([]Breadcrumb, 0, limit)
	for _, r := range records[:limit] {
		query := r.Query
		if utf8.RuneCountInString(query) > breadcrumbQueryLength {
			query = string([]rune(query)[:breadcrumbQueryLength])
		}
		crumbs = append(crumbs, Breadcrumb{
			SearchID:  r.SearchID,
			Query:     query,
			Calories:  r.Result.TotalCalories,
			CreatedAt: r.CreatedAt,
		})
	}
	return crumbs
}

// GetSearchByID returns the full record for a search within the session.
func (s *Service) GetSearchByID(sessionID, searchID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.sessions[sessionID] {
		if r.SearchID == searchID {
			return r, nil
		}
	}
	return Record{}, ErrSearchNotFound
}

// ClearHistory drops all searches for the session.
func (s *Service) ClearHistory(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// GetStats aggregates totals across all sessions.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalSessions: len(s.sessions)}
	totalCalories := 0
	for _, records := range s.sessions {
		stats.TotalSearches += len(records)
		for _, r := range records {
			totalCalories += r.Result.TotalCalories
		}
	}
	if stats.TotalSessions > 0 {
		stats.AvgCaloriesPerSession = float64(totalCalories) / float64(stats.TotalSessions)
	}
	return stats
}

func newID(prefix string) string {
	return fmt.Sprintf("%s_%d_%06x", prefix, time.Now().UnixMilli(), rand.Intn(1<<24))
}

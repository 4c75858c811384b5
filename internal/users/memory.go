package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strubloid/neotalent-sub000/internal/models"
)

// MemoryStore is an in-memory Store used in tests and when running
// without a database. Semantics mirror PostgresStore, including the
// history cap and move-to-front dedup.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	byName map[string]string // lowercased username -> id
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*models.User),
		byName: make(map[string]string),
	}
}

func (m *MemoryStore) Create(_ context.Context, username, hashedPassword, nickname string) (*models.User, error) {
	username = strings.ToLower(username)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byName[username]; exists {
		return nil, ErrDuplicateUsername
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:             uuid.NewString(),
		Username:       username,
		Nickname:       nickname,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.byID[user.ID] = user
	m.byName[username] = user.ID

	clone := *user
	return &clone, nil
}

func (m *MemoryStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	id, ok := m.byName[strings.ToLower(username)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	clone.SearchHistory = append([]models.SearchEntry(nil), user.SearchHistory...)
	return &clone, nil
}

func (m *MemoryStore) AddSearchEntry(_ context.Context, userID string, entry models.SearchEntry) ([]models.SearchEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	history := make([]models.SearchEntry, 0, len(user.SearchHistory)+1)
	history = append(history, entry)
	for _, e := range user.SearchHistory {
		if e.SearchID == entry.SearchID {
			continue
		}
		history = append(history, e)
	}
	if len(history) > models.MaxSearchHistoryEntries {
		history = history[:models.MaxSearchHistoryEntries]
	}

	user.SearchHistory = history
	user.UpdatedAt = time.Now().UTC()

	return append([]models.SearchEntry(nil), history...), nil
}

func (m *MemoryStore) GetSearchHistory(_ context.Context, userID string) ([]models.SearchEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]models.SearchEntry(nil), user.SearchHistory...), nil
}

func (m *MemoryStore) ClearSearchHistory(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[userID]
	if !ok {
		return ErrNotFound
	}
	user.SearchHistory = nil
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// Package users provides persistence for user accounts and their
// embedded search history.
package users

import (
	"context"
	"errors"

	"github.com/strubloid/neotalent-sub000/internal/models"
)

var (
	// ErrNotFound indicates no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername indicates a uniqueness violation on the
	// lowercased username.
	ErrDuplicateUsername = errors.New("username already exists")
)

// Store is the user persistence port. Usernames are matched
// case-insensitively: implementations lowercase before storing and
// looking up. Search-history mutations must be atomic per user so
// concurrent adds cannot lose entries.
type Store interface {
	// Create persists a new account. The password must already be hashed.
	Create(ctx context.Context, username, hashedPassword, nickname string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// AddSearchEntry prepends entry to the user's history. An existing
	// entry with the same search id moves to the front instead of
	// duplicating, and the history is capped at
	// models.MaxSearchHistoryEntries, oldest evicted. Returns the
	// resulting history, most-recent-first.
	AddSearchEntry(ctx context.Context, userID string, entry models.SearchEntry) ([]models.SearchEntry, error)
	GetSearchHistory(ctx context.Context, userID string) ([]models.SearchEntry, error)
	ClearSearchHistory(ctx context.Context, userID string) error
}

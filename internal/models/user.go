package models

import (
	"time"
)

// MaxSearchHistoryEntries caps the per-user persisted search history.
// Oldest entries are evicted once the cap is exceeded.
const MaxSearchHistoryEntries = 10

// User represents a user account in the system
type User struct {
	ID             string        `json:"id" db:"id"`
	Username       string        `json:"username" db:"username"`
	Nickname       string        `json:"nickname" db:"nickname"`
	HashedPassword string        `json:"-" db:"hashed_password"` // Never expose in JSON
	SearchHistory  []SearchEntry `json:"searchHistory,omitempty"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// SearchEntry is one persisted search record on a user account.
// User.SearchHistory keeps these most-recent-first.
type SearchEntry struct {
	SearchID  string    `json:"searchId"`
	Query     string    `json:"query"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// RegisterRequest represents an account registration payload
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// LoginRequest represents an authentication request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserInfo represents safe user information (without sensitive data)
type UserInfo struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// ToUserInfo converts User to UserInfo (safe for API responses)
func (u *User) ToUserInfo() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		CreatedAt: u.CreatedAt,
	}
}

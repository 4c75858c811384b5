package auth

import (
	"time"

	"github.com/strubloid/neotalent-sub000/internal/models"
)

// Session is the server-side authentication state correlated to a client
// via an opaque cookie-borne identifier.
type Session struct {
	ID              string    `json:"id"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	UserID          string    `json:"userId,omitempty"`
	Username        string    `json:"username,omitempty"`
	Nickname        string    `json:"nickname,omitempty"`
	LoginTime       string    `json:"loginTime,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// SessionUser is the denormalized identity carried by an authenticated
// session.
type SessionUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

// CreateUserSession marks the session authenticated and copies the user
// identity onto it.
func CreateUserSession(s *Session, u *models.User) {
	s.IsAuthenticated = true
	s.UserID = u.ID
	s.Username = u.Username
	s.Nickname = u.Nickname
	s.LoginTime = time.Now().UTC().Format(time.RFC3339)
}

// DestroyUserSession clears all authentication state from the session.
func DestroyUserSession(s *Session) {
	s.IsAuthenticated = false
	s.UserID = ""
	s.Username = ""
	s.Nickname = ""
	s.LoginTime = ""
}

// IsAuthenticated reports whether the session represents a logged-in
// user. Both the flag and the user id must be set; a nil session is
// simply unauthenticated.
func IsAuthenticated(s *Session) bool {
	return s != nil && s.IsAuthenticated && s.UserID != ""
}

// UserFromSession extracts the denormalized user identity, or nil when
// the session is not authenticated.
func UserFromSession(s *Session) *SessionUser {
	if !IsAuthenticated(s) {
		return nil
	}
	return &SessionUser{
		UserID:   s.UserID,
		Username: s.Username,
		Nickname: s.Nickname,
	}
}

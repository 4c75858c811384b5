package gateway

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strubloid/neotalent-sub000/internal/auth"
	"github.com/strubloid/neotalent-sub000/internal/models"
	"github.com/strubloid/neotalent-sub000/internal/users"
	"github.com/strubloid/neotalent-sub000/internal/validation"
)

// Handler handles HTTP requests for account and session endpoints
type Handler struct {
	users      users.Store
	sessions   auth.SessionStore
	cookieName string
	sessionTTL time.Duration
}

// NewHandler creates a new gateway handler
func NewHandler(userStore users.Store, sessions auth.SessionStore, cookieName string, sessionTTL time.Duration) *Handler {
	return &Handler{
		users:      userStore,
		sessions:   sessions,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
	}
}

// Register godoc
// @Summary Register account
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account details"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username, password and nickname are required"})
		return
	}

	nickname, err := validation.ValidateRegistration(req.Username, req.Password, req.Nickname)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Uniqueness pre-check; the store's unique index still backstops a
	// registration race.
	if _, err := h.users.GetByUsername(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Username already exists"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, hashed, nickname)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateUsername) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Username already exists"})
			return
		}
		c.Error(err)
		return
	}

	log.Printf(`{"level":"info","message":"User registered","user_id":"%s","username":"%s"}`,
		user.ID, user.Username)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful",
		"user":    user.ToUserInfo(),
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate and start a cookie-backed session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username and password are required"})
		return
	}

	// The response never distinguishes an unknown user from a wrong
	// password, to prevent username enumeration.
	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		log.Printf(`{"level":"warn","message":"Login failed, user not found","username":"%s"}`, req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
		return
	}

	if !auth.VerifyPassword(req.Password, user.HashedPassword) {
		log.Printf(`{"level":"warn","message":"Login failed, invalid password","username":"%s"}`, req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
		return
	}

	session := auth.SessionFromContext(c)
	if session == nil {
		session, err = h.sessions.NewSession(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
	}
	auth.CreateUserSession(session, user)

	// The session must be durably stored before the response commits the
	// cookie to the client.
	if err := h.sessions.Put(c.Request.Context(), session); err != nil {
		c.Error(err)
		return
	}

	h.setSessionCookie(c, session.ID, int(h.sessionTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user": models.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Nickname: user.Nickname,
		},
	})
}

// Logout godoc
// @Summary User logout
// @Description End the current session; logging out without one succeeds too
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	session := auth.SessionFromContext(c)
	if session != nil {
		auth.DestroyUserSession(session)
		if err := h.sessions.Delete(c.Request.Context(), session.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Logout failed"})
			return
		}
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
}

// Me godoc
// @Summary Current user
// @Description Return the authenticated user's identity from the session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user := auth.UserFromSession(auth.SessionFromContext(c))
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Status godoc
// @Summary Authentication status
// @Description Report the session state; always 200
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /auth/status [get]
func (h *Handler) Status(c *gin.Context) {
	session := auth.SessionFromContext(c)
	authenticated := auth.IsAuthenticated(session)

	var user any
	if authenticated {
		user = auth.UserFromSession(session)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"isAuthenticated": authenticated,
		"user":            user,
	})
}

// GetSearchHistory godoc
// @Summary Persisted search history
// @Description Return the account's saved searches, most recent first
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/search-history [get]
func (h *Handler) GetSearchHistory(c *gin.Context) {
	user, err := auth.RequireAuthenticated(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	history, err := h.users.GetSearchHistory(c.Request.Context(), user.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "searchHistory": history})
}

// AddSearchHistoryRequest is a search-history add payload.
type AddSearchHistoryRequest struct {
	SearchID string `json:"searchId"`
	Query    string `json:"query"`
	Summary  string `json:"summary"`
}

// AddSearchHistory godoc
// @Summary Save a search
// @Description Add a search to the account history; duplicates move to the front
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AddSearchHistoryRequest true "Search record"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/search-history [post]
func (h *Handler) AddSearchHistory(c *gin.Context) {
	user, err := auth.RequireAuthenticated(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var req AddSearchHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "searchId, query and summary are required"})
		return
	}

	if err := validation.ValidateSearchEntry(req.SearchID, req.Query, req.Summary); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	history, err := h.users.AddSearchEntry(c.Request.Context(), user.UserID, models.SearchEntry{
		SearchID:  req.SearchID,
		Query:     req.Query,
		Summary:   req.Summary,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "searchHistory": history})
}

// ClearSearchHistory godoc
// @Summary Clear search history
// @Description Remove every saved search from the account
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/search-history [delete]
func (h *Handler) ClearSearchHistory(c *gin.Context) {
	user, err := auth.RequireAuthenticated(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	if err := h.users.ClearSearchHistory(c.Request.Context(), user.UserID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Search history cleared"})
}

// DeleteAccount godoc
// @Summary Delete account
// @Description Acknowledge an account deletion request
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/account [delete]
func (h *Handler) DeleteAccount(c *gin.Context) {
	if _, err := auth.RequireAuthenticated(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	// TODO: wire actual deletion once hard-delete vs soft-delete
	// semantics are decided with product.
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deletion requested"})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

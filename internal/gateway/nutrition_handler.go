package gateway

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strubloid/neotalent-sub000/internal/apperr"
	"github.com/strubloid/neotalent-sub000/internal/auth"
	"github.com/strubloid/neotalent-sub000/internal/history"
	"github.com/strubloid/neotalent-sub000/internal/metrics"
	"github.com/strubloid/neotalent-sub000/internal/models"
	"github.com/strubloid/neotalent-sub000/internal/nutrition"
	"github.com/strubloid/neotalent-sub000/internal/users"
	"github.com/strubloid/neotalent-sub000/internal/validation"
)

// SessionIDHeader carries the anonymous search-session id for clients
// without an authenticated cookie session.
const SessionIDHeader = "X-Session-ID"

// NutritionHandler handles food analysis and session search history.
type NutritionHandler struct {
	svc             *nutrition.Service
	histories       *history.Service
	users           users.Store
	analysisMetrics *metrics.AnalysisMetrics
	maxFoodInputLen int
}

// NewNutritionHandler creates a new nutrition handler.
func NewNutritionHandler(svc *nutrition.Service, histories *history.Service, userStore users.Store, am *metrics.AnalysisMetrics, maxFoodInputLen int) *NutritionHandler {
	return &NutritionHandler{
		svc:             svc,
		histories:       histories,
		users:           userStore,
		analysisMetrics: am,
		maxFoodInputLen: maxFoodInputLen,
	}
}

// AnalyzeRequest is a food analysis payload. Food is typed loosely so a
// non-string value yields a validation message instead of a bind error.
type AnalyzeRequest struct {
	Food any `json:"food"`
}

// Analyze godoc
// @Summary Analyze food description
// @Description Estimate calories and macros for a free-text food description
// @Tags nutrition
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "Food description"
// @Success 200 {object} map[string]any
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /nutrition/analyze [post]
func (h *NutritionHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	food, err := validation.ValidateNutritionRequest(req.Food, h.maxFoodInputLen)
	if err != nil {
		c.Error(err)
		return
	}

	food = validation.SanitizeInput(food)
	if food == "" {
		c.Error(apperr.NewValidation("Food description cannot be empty"))
		return
	}

	start := time.Now()
	h.analysisMetrics.RecordAnalysisStarted(c.Request.Context())

	result, err := h.svc.AnalyzeNutrition(c.Request.Context(), food)
	if err != nil {
		code := "INTERNAL_ERROR"
		var upstream *apperr.UpstreamError
		if errors.As(err, &upstream) {
			code = upstream.Code
		}
		h.analysisMetrics.RecordAnalysisFailed(c.Request.Context(), code, time.Since(start))
		c.Error(err)
		return
	}

	h.analysisMetrics.RecordAnalysisCompleted(c.Request.Context(), result.Confidence, time.Since(start))

	sessionID, record := h.histories.SaveSearch(h.sessionID(c), food, *result)
	c.Header(SessionIDHeader, sessionID)

	if user, err := auth.RequireAuthenticated(c); err == nil {
		if _, err := h.users.AddSearchEntry(c.Request.Context(), user.UserID, models.SearchEntry{
			SearchID:  record.SearchID,
			Query:     food,
			Summary:   result.Summary,
			Timestamp: record.CreatedAt,
		}); err != nil {
			// The analysis already succeeded; a history write failure
			// must not fail the response.
			log.Printf(`{"level":"warn","message":"Failed to persist search history","user_id":"%s","error":"%v"}`,
				user.UserID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      result,
		"sessionId": sessionID,
		"searchId":  record.SearchID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Test godoc
// @Summary Test LLM connectivity
// @Description Check that the nutrition analysis upstream is reachable
// @Tags nutrition
// @Produce json
// @Success 200 {object} nutrition.ConnectionStatus
// @Failure 503 {object} nutrition.ConnectionStatus
// @Router /nutrition/test [get]
func (h *NutritionHandler) Test(c *gin.Context) {
	status := h.svc.TestConnection(c.Request.Context())
	code := http.StatusOK
	if !status.Success {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// ListSearches godoc
// @Summary Session search history
// @Description Return a page of the session's searches, most recent first
// @Tags nutrition
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param perPage query int false "Page size, max 50" default(10)
// @Success 200 {object} map[string]any
// @Router /nutrition/searches [get]
func (h *NutritionHandler) ListSearches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "10"))

	result := h.histories.GetSearchHistory(h.sessionID(c), page, perPage)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// RecentSearches godoc
// @Summary Recent searches
// @Description Return condensed breadcrumbs of the session's latest searches
// @Tags nutrition
// @Produce json
// @Param limit query int false "Max breadcrumbs" default(5)
// @Success 200 {object} map[string]any
// @Router /nutrition/searches/recent [get]
func (h *NutritionHandler) RecentSearches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	breadcrumbs := h.histories.GetRecentSearches(h.sessionID(c), limit)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": breadcrumbs})
}

// GetSearch godoc
// @Summary Search by id
// @Description Return one stored search with its full result
// @Tags nutrition
// @Produce json
// @Param searchId path string true "Search id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /nutrition/searches/{searchId} [get]
func (h *NutritionHandler) GetSearch(c *gin.Context) {
	record, err := h.histories.GetSearchByID(h.sessionID(c), c.Param("searchId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Search not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

// ClearSearches godoc
// @Summary Clear session searches
// @Description Remove every search stored for the session
// @Tags nutrition
// @Produce json
// @Success 200 {object} map[string]any
// @Router /nutrition/searches [delete]
func (h *NutritionHandler) ClearSearches(c *gin.Context) {
	h.histories.ClearHistory(h.sessionID(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Search history cleared"})
}

// sessionID resolves the search-session key: the authenticated session id
// when present, otherwise the client-supplied header. Empty means a new
// session will be started on the next save.
func (h *NutritionHandler) sessionID(c *gin.Context) string {
	if session := auth.SessionFromContext(c); auth.IsAuthenticated(session) {
		return session.ID
	}
	return c.GetHeader(SessionIDHeader)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/omdb"
	"go.uber.org/zap"
)

const (
	defaultRecommendationCount = 10
	maxRecommendationCount     = 100
)

// ProfileRequest is the body of POST /recommendations/by_profile
type ProfileRequest struct {
	LikedIMDbIDs []string `json:"liked_imdb_ids"`
}

// RecommendationResponse is the common response envelope for both
// recommendation endpoints.
type RecommendationResponse struct {
	Recommendations []omdb.Movie `json:"recommendations"`
	Message         string       `json:"message"`
}

// GetProfileRecommendations returns recommendations for a profile of
// liked movies.
// POST /api/v1/recommendations/by_profile?n=10
//
// Ordinary nothing-found conditions always answer 200 with the fallback
// list and an explanatory message; a non-200 status means a fault in
// the plumbing, not an empty result.
func (h *Handlers) GetProfileRecommendations(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request_body",
			"message": err.Error(),
		})
		return
	}

	n := parseCount(c.Query("n"))

	imdbIDs, message := h.recommender.ForProfile(c.Request.Context(), req.LikedIMDbIDs, n)

	movies := h.omdb.MoviesByIMDbIDs(c.Request.Context(), imdbIDs)
	if len(movies) < len(imdbIDs) {
		logger.Warn("Some movie details could not be fetched",
			zap.Int("requested", len(imdbIDs)),
			zap.Int("fetched", len(movies)),
		)
		message += " Some movie details could not be fetched."
	}

	c.JSON(http.StatusOK, RecommendationResponse{
		Recommendations: movies,
		Message:         message,
	})
}

// GetUserRecommendations returns recommendations derived from a user's
// rating history.
// GET /api/v1/recommendations/:user_id?n=10
func (h *Handlers) GetUserRecommendations(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_user_id",
			"message": "user_id must be a positive integer",
		})
		return
	}

	n := parseCount(c.Query("n"))

	imdbIDs, message := h.recommender.ForUser(c.Request.Context(), userID, n)

	movies := h.omdb.MoviesByIMDbIDs(c.Request.Context(), imdbIDs)
	if len(movies) < len(imdbIDs) {
		message += " Some movie details could not be fetched."
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"recommendations": movies,
		"message":         message,
	})
}

// GetMappingStats exposes the resolver's diagnostic counters.
// GET /api/v1/mapping/stats
func (h *Handlers) GetMappingStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.resolver.StatsSnapshot())
}

// parseCount parses the n query parameter, falling back to the default
// for missing or nonsensical values.
func parseCount(raw string) int {
	if raw == "" {
		return defaultRecommendationCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultRecommendationCount
	}
	if n > maxRecommendationCount {
		return maxRecommendationCount
	}
	return n
}

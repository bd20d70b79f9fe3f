package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/omdb"
	"go.uber.org/zap"
)

// SearchMovies searches OMDb by title and returns full movie details.
// GET /api/v1/search?query=<title>
func (h *Handlers) SearchMovies(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_query",
			"message": "query parameter is required",
		})
		return
	}

	movies, err := h.omdb.SearchByTitle(c.Request.Context(), query)
	if err != nil {
		logger.Error("Movie search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "search_failed",
			"message": "could not search for movies",
		})
		return
	}

	// Never encode null for an empty result
	if movies == nil {
		movies = []omdb.Movie{}
	}

	c.JSON(http.StatusOK, gin.H{
		"results": movies,
		"count":   len(movies),
	})
}

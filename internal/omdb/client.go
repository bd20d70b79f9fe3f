package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/salihRogo/movie-recommender/internal/cache"
	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/metrics"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "http://www.omdbapi.com/"
	detailCacheTTL = 24 * time.Hour
)

// Client talks to the OMDb REST API. Detail fetches for different IDs
// are independent; one slow or failing fetch never blocks the rest.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	redis   *cache.RedisClient
}

// Movie is the display record assembled from an OMDb response.
type Movie struct {
	IMDbID     string `json:"imdb_id"`
	Title      string `json:"title"`
	Year       string `json:"year"`
	PosterURL  string `json:"poster_url"`
	Genres     string `json:"genres"`
	Plot       string `json:"plot"`
	Actors     string `json:"actors"`
	IMDbRating string `json:"imdbRating"`
}

// omdbPayload mirrors OMDb's wire format, including its string-typed
// "Response" success flag.
type omdbPayload struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`

	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	Actors     string `json:"Actors"`
	ImdbRating string `json:"imdbRating"`

	Search []struct {
		ImdbID string `json:"imdbID"`
	} `json:"Search"`
}

// NewClient creates an OMDb client. redis is optional; when present,
// movie details are cached to spare the upstream quota.
func NewClient(baseURL, apiKey string, redis *cache.RedisClient) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		redis: redis,
	}
}

// MovieByIMDbID fetches details for one movie. Returns an error for any
// failure: network, OMDb-level error payload, malformed response.
func (c *Client) MovieByIMDbID(ctx context.Context, imdbID string) (*Movie, error) {
	if imdbID == "" {
		return nil, fmt.Errorf("empty IMDb ID")
	}
	if !strings.HasPrefix(imdbID, "tt") {
		imdbID = "tt" + imdbID
	}

	if c.redis != nil {
		var cached Movie
		if err := c.redis.GetJSON(ctx, detailCacheKey(imdbID), &cached); err == nil && cached.IMDbID != "" {
			return &cached, nil
		}
	}

	metrics.Get().OMDbRequestsTotal.WithLabelValues("details").Inc()

	payload, err := c.get(ctx, url.Values{"i": {imdbID}})
	if err != nil {
		metrics.Get().OMDbErrorsTotal.WithLabelValues("details").Inc()
		return nil, err
	}
	if payload.Response != "True" {
		metrics.Get().OMDbErrorsTotal.WithLabelValues("details").Inc()
		return nil, fmt.Errorf("OMDb error for %s: %s", imdbID, payload.Error)
	}

	movie := &Movie{
		IMDbID:     payload.ImdbID,
		Title:      payload.Title,
		Year:       payload.Year,
		PosterURL:  payload.Poster,
		Genres:     payload.Genre,
		Plot:       payload.Plot,
		Actors:     payload.Actors,
		IMDbRating: payload.ImdbRating,
	}

	if c.redis != nil {
		if err := c.redis.SetJSON(ctx, detailCacheKey(imdbID), movie, detailCacheTTL); err != nil {
			logger.Warn("Failed to cache OMDb details", logger.WithIMDbID(imdbID), zap.Error(err))
		}
	}

	return movie, nil
}

// MoviesByIMDbIDs fetches details for many movies concurrently and
// returns the successful subset in the input order. Individual failures
// are logged and dropped, never turned into placeholders.
func (c *Client) MoviesByIMDbIDs(ctx context.Context, imdbIDs []string) []Movie {
	if len(imdbIDs) == 0 {
		return nil
	}

	results := make([]*Movie, len(imdbIDs))
	var wg sync.WaitGroup
	for i, imdbID := range imdbIDs {
		wg.Add(1)
		go func(i int, imdbID string) {
			defer wg.Done()
			movie, err := c.MovieByIMDbID(ctx, imdbID)
			if err != nil {
				logger.Warn("Could not fetch movie details", logger.WithIMDbID(imdbID), zap.Error(err))
				return
			}
			results[i] = movie
		}(i, imdbID)
	}
	wg.Wait()

	movies := make([]Movie, 0, len(imdbIDs))
	for _, m := range results {
		if m != nil {
			movies = append(movies, *m)
		}
	}
	return movies
}

// SearchByTitle searches OMDb by movie title and returns full details
// for each hit, so the response carries plot and actors like the detail
// endpoint does.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]Movie, error) {
	metrics.Get().OMDbRequestsTotal.WithLabelValues("search").Inc()

	payload, err := c.get(ctx, url.Values{"s": {title}, "type": {"movie"}})
	if err != nil {
		metrics.Get().OMDbErrorsTotal.WithLabelValues("search").Inc()
		return nil, err
	}
	if payload.Response != "True" {
		// "Movie not found!" is an ordinary empty result, not a failure.
		logger.Log.Info("OMDb search returned no results",
			zap.String("title", title),
			zap.String("omdb_error", payload.Error),
		)
		return nil, nil
	}

	imdbIDs := make([]string, 0, len(payload.Search))
	for _, hit := range payload.Search {
		if hit.ImdbID != "" {
			imdbIDs = append(imdbIDs, hit.ImdbID)
		}
	}

	return c.MoviesByIMDbIDs(ctx, imdbIDs), nil
}

// get performs one OMDb request with the API key attached.
func (c *Client) get(ctx context.Context, params url.Values) (*omdbPayload, error) {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("OMDb API error: status %d", resp.StatusCode)
	}

	var payload omdbPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &payload, nil
}

func detailCacheKey(imdbID string) string {
	return "omdb:details:" + imdbID
}

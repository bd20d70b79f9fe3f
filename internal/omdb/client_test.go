package omdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", os.DevNull)
	os.Exit(m.Run())
}

// fakeOMDb serves canned responses keyed by the "i" (details) and "s"
// (search) query parameters.
func fakeOMDb(t *testing.T, details map[string]map[string]interface{}, search map[string][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")

		if imdbID := r.URL.Query().Get("i"); imdbID != "" {
			body, ok := details[imdbID]
			if !ok {
				json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Movie not found!"})
				return
			}
			json.NewEncoder(w).Encode(body)
			return
		}

		if title := r.URL.Query().Get("s"); title != "" {
			ids, ok := search[title]
			if !ok {
				json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Movie not found!"})
				return
			}
			hits := make([]map[string]string, 0, len(ids))
			for _, id := range ids {
				hits = append(hits, map[string]string{"imdbID": id})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"Response": "True", "Search": hits})
			return
		}

		http.Error(w, "bad request", http.StatusBadRequest)
	}))
}

func detailPayload(imdbID, title string) map[string]interface{} {
	return map[string]interface{}{
		"Response":   "True",
		"imdbID":     imdbID,
		"Title":      title,
		"Year":       "1999",
		"Poster":     "http://example.com/poster.jpg",
		"Genre":      "Drama",
		"Plot":       "A plot.",
		"Actors":     "Some Actors",
		"imdbRating": "8.8",
	}
}

func TestMovieByIMDbID(t *testing.T) {
	srv := fakeOMDb(t, map[string]map[string]interface{}{
		"tt0137523": detailPayload("tt0137523", "Fight Club"),
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "testkey", nil)

	movie, err := c.MovieByIMDbID(context.Background(), "tt0137523")
	require.NoError(t, err)
	assert.Equal(t, "tt0137523", movie.IMDbID)
	assert.Equal(t, "Fight Club", movie.Title)
	assert.Equal(t, "1999", movie.Year)
	assert.Equal(t, "http://example.com/poster.jpg", movie.PosterURL)
	assert.Equal(t, "8.8", movie.IMDbRating)
}

func TestMovieByIMDbIDAddsPrefix(t *testing.T) {
	srv := fakeOMDb(t, map[string]map[string]interface{}{
		"tt0137523": detailPayload("tt0137523", "Fight Club"),
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "testkey", nil)

	movie, err := c.MovieByIMDbID(context.Background(), "0137523")
	require.NoError(t, err)
	assert.Equal(t, "tt0137523", movie.IMDbID)
}

func TestMovieByIMDbIDNotFound(t *testing.T) {
	srv := fakeOMDb(t, nil, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "testkey", nil)

	_, err := c.MovieByIMDbID(context.Background(), "tt9999999")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Movie not found!")
}

func TestMovieByIMDbIDEmpty(t *testing.T) {
	c := NewClient("http://unused.invalid", "testkey", nil)
	_, err := c.MovieByIMDbID(context.Background(), "")
	assert.Error(t, err)
}

func TestMoviesByIMDbIDsPreservesOrderAndDropsFailures(t *testing.T) {
	srv := fakeOMDb(t, map[string]map[string]interface{}{
		"tt0000001": detailPayload("tt0000001", "First"),
		"tt0000003": detailPayload("tt0000003", "Third"),
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "testkey", nil)

	movies := c.MoviesByIMDbIDs(context.Background(), []string{"tt0000001", "tt0000002", "tt0000003"})
	require.Len(t, movies, 2)
	assert.Equal(t, "First", movies[0].Title)
	assert.Equal(t, "Third", movies[1].Title)
}

func TestMoviesByIMDbIDsEmptyInput(t *testing.T) {
	c := NewClient("http://unused.invalid", "testkey", nil)
	assert.Empty(t, c.MoviesByIMDbIDs(context.Background(), nil))
}

func TestMoviesByIMDbIDsConcurrentFetches(t *testing.T) {
	var inflight, peak atomic.Int32
	blocker := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := inflight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		<-blocker
		inflight.Add(-1)
		json.NewEncoder(w).Encode(detailPayload(r.URL.Query().Get("i"), "x"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "testkey", nil)

	done := make(chan []Movie)
	go func() {
		done <- c.MoviesByIMDbIDs(context.Background(), []string{"tt1", "tt2", "tt3"})
	}()

	// All three requests park in the handler before any completes,
	// proving the fetches are not serialized.
	for peak.Load() < 3 {
		runtime.Gosched()
	}
	close(blocker)

	movies := <-done
	assert.Len(t, movies, 3)
}

func TestSearchByTitle(t *testing.T) {
	srv := fakeOMDb(t, map[string]map[string]interface{}{
		"tt0133093": detailPayload("tt0133093", "The Matrix"),
		"tt0234215": detailPayload("tt0234215", "The Matrix Reloaded"),
	}, map[string][]string{
		"matrix": {"tt0133093", "tt0234215"},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "testkey", nil)

	movies, err := c.SearchByTitle(context.Background(), "matrix")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "The Matrix", movies[0].Title)
	assert.Equal(t, "The Matrix Reloaded", movies[1].Title)
	// Search hits come back with full details attached.
	assert.Equal(t, "A plot.", movies[0].Plot)
}

func TestSearchByTitleNoResults(t *testing.T) {
	srv := fakeOMDb(t, nil, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "testkey", nil)

	movies, err := c.SearchByTitle(context.Background(), "nosuchmovie")
	assert.NoError(t, err)
	assert.Nil(t, movies)
}

func TestSearchByTitleTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "testkey", nil)

	_, err := c.SearchByTitle(context.Background(), "anything")
	assert.Error(t, err)
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	c := NewClient("", "testkey", nil)
	assert.Equal(t, "http://www.omdbapi.com/", c.baseURL)
}

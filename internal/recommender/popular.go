package recommender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/salihRogo/movie-recommender/internal/cache"
	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	popularCacheKey = "popular_movies_fallback"
	popularCacheTTL = 24 * time.Hour

	// PopularCacheFile is the on-disk cache, used when Redis is down and
	// as the artifact consumed at next startup.
	PopularCacheFile = "popular_movies_fallback.json"
)

// PopularProvider supplies the precomputed popular-movies list used
// whenever personalization cannot produce output. The list is loaded
// cache-first (Redis, then disk) to keep startup fast; recomputation
// from the ratings table is a best-effort background concern, never a
// request-path one.
type PopularProvider struct {
	db        *gorm.DB
	redis     *cache.RedisClient
	cacheFile string

	minRatings int
	topN       int

	mu  sync.RWMutex
	ids []string
}

// NewPopularProvider creates a provider with an empty list; call Load to
// populate it.
func NewPopularProvider(db *gorm.DB, redis *cache.RedisClient, modelsDir string, minRatings, topN int) *PopularProvider {
	if minRatings <= 0 {
		minRatings = 50
	}
	if topN <= 0 {
		topN = 20
	}
	return &PopularProvider{
		db:         db,
		redis:      redis,
		cacheFile:  filepath.Join(modelsDir, PopularCacheFile),
		minRatings: minRatings,
		topN:       topN,
	}
}

// Top returns the first n popular IMDb IDs. The list may be shorter than
// n, or empty when nothing has been loaded yet.
func (p *PopularProvider) Top(_ context.Context, n int) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if n > len(p.ids) {
		n = len(p.ids)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, p.ids[:n])
	return out
}

// Len returns the current list length.
func (p *PopularProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.ids)
}

// Load populates the list, preferring a previously persisted copy over
// recomputation: Redis first, then the disk cache, and only then the
// ratings aggregation.
func (p *PopularProvider) Load(ctx context.Context) {
	if p.redis != nil {
		var ids []string
		if err := p.redis.GetJSON(ctx, popularCacheKey, &ids); err == nil && len(ids) > 0 {
			p.set(ids)
			logger.Log.Info("Loaded popular movies from Redis cache", zap.Int("count", len(ids)))
			return
		}
	}

	if ids, err := p.readFileCache(); err == nil && len(ids) > 0 {
		p.set(ids)
		logger.Log.Info("Loaded popular movies from disk cache", zap.Int("count", len(ids)))
		// Refill Redis so the next startup skips the disk read.
		if p.redis != nil {
			if err := p.redis.SetJSON(ctx, popularCacheKey, ids, popularCacheTTL); err != nil {
				logger.Warn("Failed to refill popular movies Redis cache", zap.Error(err))
			}
		}
		return
	}

	if err := p.Recompute(ctx); err != nil {
		logger.Error("Could not generate popular movies fallback list", zap.Error(err))
	}
}

// Recompute aggregates the ratings table, converts the winners to IMDb
// IDs, publishes the new list and persists it to both caches.
// Popularity is rating count first, mean rating as the tie-breaker,
// with a minimum rating-count threshold to keep obscure movies out.
func (p *PopularProvider) Recompute(ctx context.Context) error {
	if p.db == nil {
		return errors.New("no database available for popular movies aggregation")
	}

	type popularRow struct {
		MovieID    uint64
		NumRatings int64
		AvgRating  float64
	}

	var rows []popularRow
	err := p.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("movie_id, COUNT(*) AS num_ratings, AVG(rating) AS avg_rating").
		Group("movie_id").
		Having("COUNT(*) > ?", p.minRatings).
		Order("num_ratings DESC, avg_rating DESC").
		Limit(p.topN).
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("aggregating ratings: %w", err)
	}
	if len(rows) == 0 {
		return errors.New("no movies passed the popularity threshold")
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		imdbID, ok := p.imdbIDForMovie(ctx, row.MovieID)
		if !ok {
			continue
		}
		ids = append(ids, imdbID)
	}
	if len(ids) == 0 {
		return errors.New("no popular movies could be mapped to IMDb IDs")
	}

	p.set(ids)
	logger.Log.Info("Recomputed popular movies from ratings", zap.Int("count", len(ids)))

	if p.redis != nil {
		if err := p.redis.SetJSON(ctx, popularCacheKey, ids, popularCacheTTL); err != nil {
			logger.Warn("Failed to cache popular movies in Redis", zap.Error(err))
		}
	}
	if err := p.writeFileCache(ids); err != nil {
		logger.Warn("Failed to cache popular movies to disk", zap.Error(err))
	}

	return nil
}

func (p *PopularProvider) imdbIDForMovie(ctx context.Context, movieID uint64) (string, bool) {
	var link models.MovieLink
	err := p.db.WithContext(ctx).Where("movie_id = ?", movieID).First(&link).Error
	if err != nil {
		return "", false
	}
	imdbID := link.IMDbID
	if !strings.HasPrefix(imdbID, "tt") {
		imdbID = "tt" + imdbID
	}
	return imdbID, true
}

func (p *PopularProvider) set(ids []string) {
	p.mu.Lock()
	p.ids = ids
	p.mu.Unlock()
}

func (p *PopularProvider) readFileCache() ([]string, error) {
	data, err := os.ReadFile(p.cacheFile)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(p.cacheFile), err)
	}
	return ids, nil
}

func (p *PopularProvider) writeFileCache(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.cacheFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.cacheFile, data, 0o644)
}

// SetForTesting replaces the list directly. Exposed for tests that need
// a known fallback without a database or cache.
func (p *PopularProvider) SetForTesting(ids []string) {
	p.set(ids)
}

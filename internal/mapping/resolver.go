package mapping

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/metrics"
	"github.com/salihRogo/movie-recommender/internal/model"
	"github.com/salihRogo/movie-recommender/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// statsLogInterval controls the periodic mapping-statistics log line.
const statsLogInterval = 100

// Resolver bridges the caller-facing IMDb ID namespace to the model's
// raw item ID namespace. Resolution is a two-tier strategy tried in
// order: the ID may already be a model raw key (newer model generations
// are keyed by IMDb ID directly), otherwise the relational links and
// enhanced_links tables are consulted. Database unavailability degrades
// to a miss, never an error to the caller.
type Resolver struct {
	db    *gorm.DB
	stats Stats
}

// NewResolver creates a resolver backed by the given database handle.
// db may be nil; every store lookup then degrades to a miss.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve maps an IMDb ID to a raw model key, or reports failure.
// The returned key is guaranteed to be present in the snapshot's
// raw-to-inner item map.
func (r *Resolver) Resolve(ctx context.Context, snap *model.Snapshot, imdbID string) (string, bool) {
	total := r.stats.TotalRequests.Add(1)
	m := metrics.Get()
	m.MappingRequestsTotal.Inc()

	defer func() {
		if total%statsLogInterval == 0 {
			r.logStats()
		}
	}()

	// Tier one: the ID is already a raw model key.
	if _, ok := snap.InnerIID(imdbID); ok {
		r.stats.DirectHits.Add(1)
		m.MappingDirectHits.Inc()
		return imdbID, true
	}

	// Tier two: the links table, keyed by IMDb ID without the tt prefix.
	if candidate, ok := r.lookupLinks(ctx, imdbID); ok {
		if _, inModel := snap.InnerIID(candidate); inModel {
			r.stats.DirectHits.Add(1)
			m.MappingDirectHits.Inc()
			return candidate, true
		}
	}

	// Tier three: the curated enhanced_links table, keyed with the prefix.
	if candidate, ok := r.lookupEnhancedLinks(ctx, imdbID); ok {
		if _, inModel := snap.InnerIID(candidate); inModel {
			r.stats.EnhancedHits.Add(1)
			m.MappingEnhancedHits.Inc()
			return candidate, true
		}
	}

	r.stats.Misses.Add(1)
	m.MappingMisses.Inc()
	return "", false
}

// BatchToIMDb converts ranked raw model keys back to IMDb IDs for
// display. Input may be mixed: keys that already look like IMDb IDs
// (tt-prefixed, or listed in the model's known-ID set) pass through,
// the rest go through a reverse links lookup. Keys that cannot be
// converted are dropped.
func (r *Resolver) BatchToIMDb(ctx context.Context, snap *model.Snapshot, rawIDs []string) []string {
	imdbIDs := make([]string, 0, len(rawIDs))
	for _, rawID := range rawIDs {
		if strings.HasPrefix(rawID, "tt") || snap.KnowsIMDbID(rawID) {
			imdbIDs = append(imdbIDs, rawID)
			continue
		}

		movieID, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil {
			continue
		}

		if r.db == nil {
			continue
		}
		var link models.MovieLink
		err = r.db.WithContext(ctx).Where("movie_id = ?", movieID).First(&link).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				r.stats.Errors.Add(1)
				metrics.Get().MappingErrors.Inc()
				logger.Error("Reverse mapping lookup failed",
					zap.String("raw_id", rawID),
					zap.Error(err),
				)
			}
			continue
		}

		imdbID := link.IMDbID
		if !strings.HasPrefix(imdbID, "tt") {
			imdbID = "tt" + imdbID
		}
		imdbIDs = append(imdbIDs, imdbID)
	}
	return imdbIDs
}

// lookupLinks queries the links table for an IMDb ID without its prefix.
func (r *Resolver) lookupLinks(ctx context.Context, imdbID string) (string, bool) {
	if r.db == nil {
		return "", false
	}

	clean := strings.TrimPrefix(imdbID, "tt")

	var link models.MovieLink
	err := r.db.WithContext(ctx).Where("imdb_id = ?", clean).First(&link).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.stats.Errors.Add(1)
			metrics.Get().MappingErrors.Inc()
			logger.Error("Links lookup failed", logger.WithIMDbID(imdbID), zap.Error(err))
		}
		return "", false
	}

	return strconv.FormatUint(link.MovieID, 10), true
}

// lookupEnhancedLinks queries the curated mapping table, preferring the
// highest-confidence match.
func (r *Resolver) lookupEnhancedLinks(ctx context.Context, imdbID string) (string, bool) {
	if r.db == nil {
		return "", false
	}

	withPrefix := imdbID
	if !strings.HasPrefix(withPrefix, "tt") {
		withPrefix = "tt" + withPrefix
	}

	var link models.EnhancedLink
	err := r.db.WithContext(ctx).
		Where("imdb_id = ?", withPrefix).
		Order("confidence DESC").
		First(&link).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.stats.Errors.Add(1)
			metrics.Get().MappingErrors.Inc()
			logger.Error("Enhanced links lookup failed", logger.WithIMDbID(imdbID), zap.Error(err))
		}
		return "", false
	}

	return strconv.FormatUint(link.MovieID, 10), true
}

func (r *Resolver) logStats() {
	snap := r.stats.Snapshot()
	logger.Log.Info("Mapping statistics",
		zap.Int64("total_requests", snap.TotalRequests),
		zap.Int64("direct_hits", snap.DirectHits),
		zap.Int64("enhanced_hits", snap.EnhancedHits),
		zap.Int64("misses", snap.Misses),
		zap.Int64("errors", snap.Errors),
		zap.Float64("success_rate", snap.SuccessRate),
	)
}

// StatsSnapshot returns a point-in-time copy of the mapping counters.
func (r *Resolver) StatsSnapshot() StatsSnapshot {
	return r.stats.Snapshot()
}

package recommender

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/mapping"
	"github.com/salihRogo/movie-recommender/internal/metrics"
	"github.com/salihRogo/movie-recommender/internal/model"
	"github.com/salihRogo/movie-recommender/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// User-facing messages for each fallback branch. Every branch returns a
// usable result; the message is the only signal that personalization
// did not happen.
const (
	MsgModelLoading   = "Recommender model is still loading. Popular movies returned instead."
	MsgEmptyProfile   = "No movies provided in your profile. Showing popular movies instead."
	MsgNoLikedFound   = "None of your liked movies were found in our database. Showing popular movies instead."
	MsgNoValidIDs     = "None of your liked movies could be used for recommendations. Showing popular movies instead."
	MsgNoRecsFound    = "Could not find personalized recommendations based on your profile. Showing popular movies instead."
	MsgUnknownUser    = "You're a new user! Try rating some movies to get personalized recommendations."
	MsgNoUserRecs     = "Could not generate personalized recommendations. Showing popular movies instead."
	MsgReverseFailure = "Could not map movie IDs to IMDb IDs. Showing popular movies instead."
)

// Service generates ranked movie recommendations from the embedding
// model, falling back to the popular list whenever personalization
// cannot be completed.
type Service struct {
	store    *model.Store
	resolver *mapping.Resolver
	popular  *PopularProvider
	db       *gorm.DB
}

// NewService creates a recommendation service.
func NewService(store *model.Store, resolver *mapping.Resolver, popular *PopularProvider, db *gorm.DB) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		popular:  popular,
		db:       db,
	}
}

// Store exposes the underlying model store (for health reporting).
func (s *Service) Store() *model.Store {
	return s.store
}

// ForProfile generates up to n recommendations from a list of liked
// IMDb IDs. It never fails for ordinary data-absence conditions; every
// fallback branch returns the popular list with an explanatory message.
func (s *Service) ForProfile(ctx context.Context, likedIMDbIDs []string, n int) ([]string, string) {
	start := time.Now()
	defer func() {
		metrics.Get().RecommendationLatency.WithLabelValues("profile").Observe(time.Since(start).Seconds())
	}()

	snap := s.store.Snapshot()
	if snap == nil {
		logger.Warn("Model not loaded, returning popular movie fallback")
		return s.fallback(ctx, n, "model_loading"), MsgModelLoading
	}

	if len(likedIMDbIDs) == 0 {
		return s.fallback(ctx, n, "empty_profile"), MsgEmptyProfile
	}

	// Resolve each liked ID into the model's raw key namespace, dropping
	// the ones that cannot be mapped.
	mapped := make([]string, 0, len(likedIMDbIDs))
	mappedSet := make(map[string]bool, len(likedIMDbIDs))
	for _, imdbID := range likedIMDbIDs {
		rawID, ok := s.resolver.Resolve(ctx, snap, imdbID)
		if !ok || mappedSet[rawID] {
			continue
		}
		mapped = append(mapped, rawID)
		mappedSet[rawID] = true
	}

	logger.Log.Info("Resolved profile movies",
		zap.Int("liked", len(likedIMDbIDs)),
		zap.Int("mapped", len(mapped)),
	)

	if len(mapped) == 0 {
		return s.fallback(ctx, n, "no_liked_found"), MsgNoLikedFound
	}

	// Fetch the embedding for each resolved key. The bounds check in
	// VectorFor drops inner indices beyond the matrix, which happens when
	// the map artifact and matrix artifact drift apart.
	vectors := make([][]float64, 0, len(mapped))
	for _, rawID := range mapped {
		inner, ok := snap.InnerIID(rawID)
		if !ok {
			continue
		}
		if v, ok := snap.VectorFor(inner); ok {
			vectors = append(vectors, v)
		}
	}

	if len(vectors) == 0 {
		return s.fallback(ctx, n, "no_valid_ids"), MsgNoValidIDs
	}

	// The taste vector: element-wise mean of the liked-item embeddings.
	taste := meanVector(vectors)

	// Rank every other catalog item by cosine similarity to the taste
	// vector. EachItem iterates in ascending inner-index order and the
	// sort is stable, so equal scores keep catalog order and repeated
	// calls produce identical output.
	type scoredItem struct {
		rawID string
		score float64
	}
	scores := make([]scoredItem, 0, snap.ItemCount())
	snap.EachItem(func(inner int, rawID string) {
		if mappedSet[rawID] {
			return
		}
		v, ok := snap.VectorFor(inner)
		if !ok {
			return
		}
		scores = append(scores, scoredItem{rawID: rawID, score: cosineSimilarity(taste, v)})
	})

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	// Over-fetch 2n candidates: reverse ID conversion can fail for some
	// of them and the response should still fill n slots.
	limit := 2 * n
	if limit > len(scores) {
		limit = len(scores)
	}
	topRawIDs := make([]string, 0, limit)
	for _, sc := range scores[:limit] {
		topRawIDs = append(topRawIDs, sc.rawID)
	}

	imdbIDs := s.resolver.BatchToIMDb(ctx, snap, topRawIDs)
	if len(imdbIDs) == 0 {
		return s.fallback(ctx, n, "reverse_mapping_empty"), MsgNoRecsFound
	}

	if len(imdbIDs) > n {
		imdbIDs = imdbIDs[:n]
	}

	metrics.Get().RecommendationsServed.WithLabelValues("personalized").Inc()
	return imdbIDs, fmt.Sprintf("Generated %d recommendations based on your movie profile.", len(imdbIDs))
}

// ForUser generates up to n recommendations from a user's rating
// history, scoring every unrated catalog item with the factorization
// model's rating estimate.
func (s *Service) ForUser(ctx context.Context, userID uint64, n int) ([]string, string) {
	start := time.Now()
	defer func() {
		metrics.Get().RecommendationLatency.WithLabelValues("user").Observe(time.Since(start).Seconds())
	}()

	snap := s.store.Snapshot()
	if snap == nil {
		logger.Warn("Model not loaded, returning popular movie fallback", logger.WithUserID(userID))
		return s.fallback(ctx, n, "model_loading"), MsgModelLoading
	}

	innerUID, ok := snap.InnerUID(strconv.FormatUint(userID, 10))
	if !ok {
		logger.Log.Info("User not found in model, using popular fallback", logger.WithUserID(userID))
		return s.fallback(ctx, n, "unknown_user"), MsgUnknownUser
	}

	ratedInner := s.ratedInnerIDs(ctx, snap, userID)

	type scoredItem struct {
		rawID string
		score float64
	}
	scores := make([]scoredItem, 0, snap.ItemCount())
	snap.EachItem(func(inner int, rawID string) {
		if ratedInner[inner] {
			return
		}
		scores = append(scores, scoredItem{rawID: rawID, score: snap.Estimate(innerUID, inner)})
	})

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	limit := 2 * n
	if limit > len(scores) {
		limit = len(scores)
	}
	topRawIDs := make([]string, 0, limit)
	for _, sc := range scores[:limit] {
		topRawIDs = append(topRawIDs, sc.rawID)
	}

	if len(topRawIDs) == 0 {
		return s.fallback(ctx, n, "no_user_recommendations"), MsgNoUserRecs
	}

	imdbIDs := s.resolver.BatchToIMDb(ctx, snap, topRawIDs)
	if len(imdbIDs) == 0 {
		return s.fallback(ctx, n, "reverse_mapping_empty"), MsgReverseFailure
	}

	if len(imdbIDs) > n {
		imdbIDs = imdbIDs[:n]
	}

	metrics.Get().RecommendationsServed.WithLabelValues("personalized").Inc()
	return imdbIDs, fmt.Sprintf("Generated %d personalized recommendations based on your rating history.", len(imdbIDs))
}

// ratedInnerIDs returns the inner indices of every movie the user has
// already rated, so they can be excluded from ranking. A database
// failure returns an empty set and the request continues.
func (s *Service) ratedInnerIDs(ctx context.Context, snap *model.Snapshot, userID uint64) map[int]bool {
	rated := make(map[int]bool)
	if s.db == nil {
		return rated
	}

	var movieIDs []uint64
	err := s.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("user_id = ?", userID).
		Pluck("movie_id", &movieIDs).Error
	if err != nil {
		logger.Error("Failed to load rated movies, continuing without exclusions",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		return rated
	}

	for _, movieID := range movieIDs {
		if inner, ok := snap.InnerIID(strconv.FormatUint(movieID, 10)); ok {
			rated[inner] = true
		}
	}
	return rated
}

// fallback returns the first n popular movies and records the outcome.
func (s *Service) fallback(ctx context.Context, n int, outcome string) []string {
	metrics.Get().RecommendationsServed.WithLabelValues(outcome).Inc()
	return s.popular.Top(ctx, n)
}

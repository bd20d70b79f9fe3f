package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations for development and for
// exercising the recommender locally without the full MovieLens import.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev populates links, enhanced_links and ratings with realistic
// development data: a catalog of movies, a curated mapping subset, and
// enough ratings that the popular-movies aggregation has winners.
func (s *Seeder) SeedDev(movieCount, userCount int) error {
	if movieCount <= 0 {
		movieCount = 500
	}
	if userCount <= 0 {
		userCount = 200
	}

	logger.Log.Info("Seeding movie links...")
	links, err := s.seedLinks(movieCount)
	if err != nil {
		return fmt.Errorf("failed to seed links: %w", err)
	}

	logger.Log.Info("Seeding enhanced links...")
	if err := s.seedEnhancedLinks(links); err != nil {
		return fmt.Errorf("failed to seed enhanced links: %w", err)
	}

	logger.Log.Info("Seeding ratings...")
	if err := s.seedRatings(links, userCount); err != nil {
		return fmt.Errorf("failed to seed ratings: %w", err)
	}

	logger.Log.Info("✅ Seeding completed",
		zap.Int("movies", movieCount),
		zap.Int("users", userCount),
	)
	return nil
}

// seedLinks creates the MovieLens-to-IMDb mapping rows. IMDb IDs are stored
// without the tt prefix, matching the links.csv convention.
func (s *Seeder) seedLinks(count int) ([]models.MovieLink, error) {
	links := make([]models.MovieLink, 0, count)
	for i := 1; i <= count; i++ {
		links = append(links, models.MovieLink{
			MovieID: uint64(i),
			IMDbID:  fmt.Sprintf("%07d", gofakeit.Number(100000, 9999999)),
			TMDbID:  fmt.Sprintf("%d", gofakeit.Number(1000, 999999)),
		})
	}

	if err := s.db.CreateInBatches(&links, 100).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// seedEnhancedLinks curates a subset of the links with match metadata,
// the way the offline title-matching job would.
func (s *Seeder) seedEnhancedLinks(links []models.MovieLink) error {
	matchTypes := []string{"exact_title", "title_year", "fuzzy_title"}

	enhanced := make([]models.EnhancedLink, 0, len(links)/3)
	for _, link := range links {
		if rand.Float64() > 0.33 {
			continue
		}
		enhanced = append(enhanced, models.EnhancedLink{
			IMDbID:     "tt" + link.IMDbID,
			MovieID:    link.MovieID,
			MatchType:  gofakeit.RandomString(matchTypes),
			Confidence: 0.5 + rand.Float64()*0.5,
		})
	}

	if len(enhanced) == 0 {
		return nil
	}
	return s.db.CreateInBatches(&enhanced, 100).Error
}

// seedRatings gives every user a skewed rating history so a handful of
// movies cross the popularity threshold.
func (s *Seeder) seedRatings(links []models.MovieLink, userCount int) error {
	ratings := make([]models.Rating, 0, userCount*30)
	for userID := 1; userID <= userCount; userID++ {
		rated := make(map[uint64]bool)
		n := gofakeit.Number(10, 50)
		for i := 0; i < n; i++ {
			// Zipf-ish skew: early catalog entries get rated far more often,
			// which is what makes the popularity aggregation meaningful.
			var movieID uint64
			if rand.Float64() < 0.6 {
				movieID = links[rand.Intn(len(links)/10+1)].MovieID
			} else {
				movieID = links[rand.Intn(len(links))].MovieID
			}
			if rated[movieID] {
				continue
			}
			rated[movieID] = true

			ratings = append(ratings, models.Rating{
				UserID:  uint64(userID),
				MovieID: movieID,
				Rating:  float64(gofakeit.Number(1, 10)) / 2.0,
			})
		}
	}

	return s.db.CreateInBatches(&ratings, 500).Error
}

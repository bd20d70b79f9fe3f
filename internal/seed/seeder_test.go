package seed

import (
	"os"
	"testing"

	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", os.DevNull)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.MovieLink{}, &models.EnhancedLink{}, &models.Rating{}))
	return db
}

func TestSeedDev(t *testing.T) {
	db := setupTestDB(t)

	seeder := NewSeeder(db)
	require.NoError(t, seeder.SeedDev(50, 10))

	var linkCount int64
	require.NoError(t, db.Model(&models.MovieLink{}).Count(&linkCount).Error)
	assert.Equal(t, int64(50), linkCount)

	var ratingCount int64
	require.NoError(t, db.Model(&models.Rating{}).Count(&ratingCount).Error)
	// Every user rates at least 10 movies, minus in-user duplicates.
	assert.Greater(t, ratingCount, int64(10))

	// Enhanced links reference real catalog entries with the tt prefix.
	var enhanced []models.EnhancedLink
	require.NoError(t, db.Find(&enhanced).Error)
	for _, e := range enhanced {
		assert.Regexp(t, `^tt\d{7}$`, e.IMDbID)
		assert.GreaterOrEqual(t, e.Confidence, 0.5)
		assert.LessOrEqual(t, e.Confidence, 1.0)
		assert.LessOrEqual(t, e.MovieID, uint64(50))
	}
}

func TestSeedDevRatingsAreValid(t *testing.T) {
	db := setupTestDB(t)

	seeder := NewSeeder(db)
	require.NoError(t, seeder.SeedDev(30, 5))

	var ratings []models.Rating
	require.NoError(t, db.Find(&ratings).Error)
	require.NotEmpty(t, ratings)

	for _, r := range ratings {
		assert.GreaterOrEqual(t, r.Rating, 0.5)
		assert.LessOrEqual(t, r.Rating, 5.0)
		assert.NotZero(t, r.UserID)
		assert.LessOrEqual(t, r.MovieID, uint64(30))
	}
}

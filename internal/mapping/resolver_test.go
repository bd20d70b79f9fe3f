package mapping

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/model"
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
	require.NoError(t, db.AutoMigrate(&models.MovieLink{}, &models.EnhancedLink{}))
	return db
}

// testSnapshot loads a model whose raw keys are the MovieLens IDs 318
// and 858 plus the IMDb-keyed item tt0137523.
func testSnapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	dir := t.TempDir()

	write := func(name string, v interface{}) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	write(model.ComponentsFile, model.Components{
		Qi: [][]float64{{1, 0}, {0, 1}, {1, 1}},
	})
	write(model.RawToInnerIIDFile, map[string]int{"318": 0, "858": 1, "tt0137523": 2})
	write(model.AllIMDbIDsFile, []string{"tt0137523"})

	store := model.NewStore()
	require.NoError(t, store.Load(dir))
	return store.Snapshot()
}

func TestResolveDirectModelKey(t *testing.T) {
	r := NewResolver(setupTestDB(t))
	snap := testSnapshot(t)

	raw, ok := r.Resolve(context.Background(), snap, "tt0137523")
	require.True(t, ok)
	assert.Equal(t, "tt0137523", raw)

	stats := r.StatsSnapshot()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.DirectHits)
}

func TestResolveViaLinksTable(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.MovieLink{MovieID: 318, IMDbID: "0111161"}).Error)

	r := NewResolver(db)
	snap := testSnapshot(t)

	raw, ok := r.Resolve(context.Background(), snap, "tt0111161")
	require.True(t, ok)
	assert.Equal(t, "318", raw)
	assert.Equal(t, int64(1), r.StatsSnapshot().DirectHits)
}

func TestResolveViaEnhancedLinks(t *testing.T) {
	db := setupTestDB(t)
	// Two candidate mappings; the higher-confidence one must win.
	require.NoError(t, db.Create(&models.EnhancedLink{IMDbID: "tt0068646", MovieID: 318, MatchType: "fuzzy_title", Confidence: 0.5}).Error)
	require.NoError(t, db.Create(&models.EnhancedLink{IMDbID: "tt0068646", MovieID: 858, MatchType: "exact_title", Confidence: 0.95}).Error)

	r := NewResolver(db)
	snap := testSnapshot(t)

	raw, ok := r.Resolve(context.Background(), snap, "tt0068646")
	require.True(t, ok)
	assert.Equal(t, "858", raw)

	stats := r.StatsSnapshot()
	assert.Equal(t, int64(1), stats.EnhancedHits)
	assert.Equal(t, int64(0), stats.DirectHits)
}

func TestResolveEnhancedLinksAddsPrefix(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.EnhancedLink{IMDbID: "tt0068646", MovieID: 858, Confidence: 0.9}).Error)

	r := NewResolver(db)
	snap := testSnapshot(t)

	// Enhanced links are keyed with the prefix even when the caller
	// omits it.
	raw, ok := r.Resolve(context.Background(), snap, "0068646")
	require.True(t, ok)
	assert.Equal(t, "858", raw)
}

func TestResolveLinksHitOutsideModelFallsThrough(t *testing.T) {
	db := setupTestDB(t)
	// The links table knows the movie but the model does not; the
	// resolver must keep trying and finally report a miss.
	require.NoError(t, db.Create(&models.MovieLink{MovieID: 999999, IMDbID: "0120737"}).Error)

	r := NewResolver(db)
	snap := testSnapshot(t)

	_, ok := r.Resolve(context.Background(), snap, "tt0120737")
	assert.False(t, ok)
	assert.Equal(t, int64(1), r.StatsSnapshot().Misses)
}

func TestResolveMiss(t *testing.T) {
	r := NewResolver(setupTestDB(t))
	snap := testSnapshot(t)

	_, ok := r.Resolve(context.Background(), snap, "tt7777777")
	assert.False(t, ok)

	stats := r.StatsSnapshot()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, float64(0), stats.SuccessRate)
}

func TestResolveNilDatabase(t *testing.T) {
	r := NewResolver(nil)
	snap := testSnapshot(t)

	// Direct model keys still work without a database.
	_, ok := r.Resolve(context.Background(), snap, "tt0137523")
	assert.True(t, ok)

	// Everything else degrades to a miss.
	_, ok = r.Resolve(context.Background(), snap, "tt0111161")
	assert.False(t, ok)
}

func TestBatchToIMDb(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.MovieLink{MovieID: 318, IMDbID: "0111161"}).Error)
	require.NoError(t, db.Create(&models.MovieLink{MovieID: 858, IMDbID: "tt0068646"}).Error)

	r := NewResolver(db)
	snap := testSnapshot(t)

	got := r.BatchToIMDb(context.Background(), snap, []string{
		"tt0137523", // already an IMDb ID, passes through
		"318",       // reverse links lookup, prefix restored
		"858",       // reverse links lookup, prefix already present
		"424242",    // no links row, dropped
		"notanid",   // unparseable, dropped
	})
	assert.Equal(t, []string{"tt0137523", "tt0111161", "tt0068646"}, got)
}

func TestBatchToIMDbNilDatabase(t *testing.T) {
	r := NewResolver(nil)
	snap := testSnapshot(t)

	got := r.BatchToIMDb(context.Background(), snap, []string{"tt0137523", "318"})
	assert.Equal(t, []string{"tt0137523"}, got)
}

func TestStatsSuccessRate(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.MovieLink{MovieID: 318, IMDbID: "0111161"}).Error)

	r := NewResolver(db)
	snap := testSnapshot(t)

	r.Resolve(context.Background(), snap, "tt0111161") // hit
	r.Resolve(context.Background(), snap, "tt7777777") // miss

	stats := r.StatsSnapshot()
	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
}

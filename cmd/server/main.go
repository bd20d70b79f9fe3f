package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/salihRogo/movie-recommender/internal/cache"
	"github.com/salihRogo/movie-recommender/internal/config"
	"github.com/salihRogo/movie-recommender/internal/database"
	"github.com/salihRogo/movie-recommender/internal/handlers"
	"github.com/salihRogo/movie-recommender/internal/logger"
	"github.com/salihRogo/movie-recommender/internal/mapping"
	"github.com/salihRogo/movie-recommender/internal/metrics"
	"github.com/salihRogo/movie-recommender/internal/middleware"
	"github.com/salihRogo/movie-recommender/internal/model"
	"github.com/salihRogo/movie-recommender/internal/omdb"
	"github.com/salihRogo/movie-recommender/internal/recommender"
	"github.com/salihRogo/movie-recommender/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Movie recommender server starting ===")

	metrics.Initialize()

	// Initialize database
	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is an optimization, not a dependency: without it the popular
	// list falls back to disk and OMDb responses go uncached.
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Wire the recommendation core.
	store := model.NewStore()
	resolver := mapping.NewResolver(database.DB)
	popular := recommender.NewPopularProvider(database.DB, redisClient, cfg.ModelsDir, cfg.PopularMinRatings, cfg.PopularTopN)
	recService := recommender.NewService(store, resolver, popular, database.DB)
	omdbClient := omdb.NewClient(cfg.OMDbAPIBaseURL, cfg.OMDbAPIKey, redisClient)

	// Model loading is slow and must not delay request acceptance.
	// Requests arriving before it finishes get the popular fallback.
	go loadModelArtifacts(cfg, store, popular)

	h := handlers.NewHandlers(recService, omdbClient, resolver)

	// Setup Gin router
	r := gin.Default()

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Movie Recommender API!"})
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		if err := database.Health(); err != nil {
			dbStatus = "unavailable"
		}
		redisStatus := "ok"
		if redisClient == nil || redisClient.Ping(c.Request.Context()) != nil {
			redisStatus = "unavailable"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"timestamp":    time.Now().UTC(),
			"service":      "movie-recommender",
			"model_loaded": store.Ready(),
			"database":     dbStatus,
			"redis":        redisStatus,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		recommendations := api.Group("/recommendations")
		{
			recommendations.POST("/by_profile", h.GetProfileRecommendations)
			recommendations.GET("/:user_id", h.GetUserRecommendations)
		}

		api.GET("/search", h.SearchMovies)
		api.GET("/mapping/stats", h.GetMappingStats)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("🎬 Movie recommender backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}

// loadModelArtifacts optionally syncs artifacts from S3, loads the
// model, then loads the popular fallback list. Failures leave the store
// not ready; every request then serves the popular fallback (or an
// empty list with an explanatory message).
func loadModelArtifacts(cfg *config.Config, store *model.Store, popular *recommender.PopularProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if cfg.ModelS3Bucket != "" {
		artifacts, err := storage.NewArtifactStore(cfg.AWSRegion, cfg.ModelS3Bucket, cfg.ModelS3Prefix)
		if err != nil {
			logger.Error("Could not create S3 artifact store, using local artifacts only", zap.Error(err))
		} else {
			names := []string{
				model.ComponentsFile,
				model.RawToInnerIIDFile,
				model.RawToInnerUIDFile,
				model.InnerToRawIIDFile,
				model.AllIMDbIDsFile,
				recommender.PopularCacheFile,
			}
			if err := artifacts.SyncTo(ctx, cfg.ModelsDir, names); err != nil {
				logger.Error("S3 artifact sync failed, using local artifacts only", zap.Error(err))
			}
		}
	}

	if err := store.Load(cfg.ModelsDir); err != nil {
		logger.Warn("Model not loaded, serving popular fallback until reload")
	}

	popular.Load(ctx)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/salihRogo/movie-recommender/internal/cache"
	"github.com/salihRogo/movie-recommender/internal/database"
	"github.com/salihRogo/movie-recommender/internal/recommender"
	"github.com/spf13/cobra"
)

var (
	popularMinRatings int
	popularTopN       int
)

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Manage the popular movies fallback list",
}

var popularRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute the popular list from the ratings table",
	Long: `Recompute the popular movies fallback from the ratings table and
write it to Redis and the on-disk cache file. The running server picks
up the Redis copy on its next reload, so this is safe to run while the
API is serving traffic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Initialize(); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		// Redis is optional here just like in the server.
		redisClient, err := cache.NewRedisClient(
			envOrDefault("REDIS_HOST", "localhost"),
			envOrDefault("REDIS_PORT", "6379"),
			os.Getenv("REDIS_PASSWORD"),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Redis unavailable, writing disk cache only: %v\n", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}

		popular := recommender.NewPopularProvider(database.DB, redisClient, modelsDir, popularMinRatings, popularTopN)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := popular.Recompute(ctx); err != nil {
			return fmt.Errorf("failed to rebuild popular list: %w", err)
		}

		ids := popular.Top(ctx, popularTopN)
		if output == "json" {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"count":    len(ids),
				"imdb_ids": ids,
			})
		}

		fmt.Printf("Popular list rebuilt with %d movies\n", len(ids))
		for i, id := range ids {
			fmt.Printf("  %2d. %s\n", i+1, id)
		}
		return nil
	},
}

func init() {
	popularCmd.PersistentFlags().StringVar(&modelsDir, "models-dir", "models", "Directory for the on-disk popular cache file")
	popularRebuildCmd.Flags().IntVar(&popularMinRatings, "min-ratings", 50, "Minimum rating count for a movie to qualify")
	popularRebuildCmd.Flags().IntVar(&popularTopN, "top", 20, "How many movies to keep")
	popularCmd.AddCommand(popularRebuildCmd)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

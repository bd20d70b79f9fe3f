// Package movierecommender is the movie recommender API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/recommender: Recommendation scoring and the popular fallback
// - internal/model: Factorization model artifacts and atomic reloads
// - internal/mapping: IMDb ID to model key resolution
// - internal/omdb: OMDb client for movie detail enrichment
// - internal/models: Data models and database schemas
// - internal/database: Database connection and migrations
// - internal/cache: Redis caching
// - internal/storage: Model artifact downloads from S3
// - internal/middleware: HTTP middleware (request IDs, metrics)
// - internal/seed: Development data seeding

// See the individual package documentation for detailed API reference.
package movierecommender

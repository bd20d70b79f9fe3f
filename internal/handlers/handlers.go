package handlers

import (
	"github.com/salihRogo/movie-recommender/internal/mapping"
	"github.com/salihRogo/movie-recommender/internal/omdb"
	"github.com/salihRogo/movie-recommender/internal/recommender"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	recommender *recommender.Service
	omdb        *omdb.Client
	resolver    *mapping.Resolver
}

// NewHandlers creates a new handlers instance
func NewHandlers(rec *recommender.Service, omdbClient *omdb.Client, resolver *mapping.Resolver) *Handlers {
	return &Handlers{
		recommender: rec,
		omdb:        omdbClient,
		resolver:    resolver,
	}
}

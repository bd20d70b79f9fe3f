package models

import (
	"time"
)

// MovieLink maps a MovieLens movie ID to its IMDb ID, mirroring the
// MovieLens links.csv dataset. IMDbID is stored without the "tt" prefix.
type MovieLink struct {
	MovieID uint64 `gorm:"primaryKey;autoIncrement:false" json:"movie_id"`
	IMDbID  string `gorm:"column:imdb_id;not null;index" json:"imdb_id"`
	TMDbID  string `gorm:"column:tmdb_id" json:"tmdb_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (MovieLink) TableName() string {
	return "links"
}

// EnhancedLink is a curated IMDb-to-MovieLens mapping built offline by a
// title-matching job. Unlike links, IMDbID here keeps the "tt" prefix and
// each row carries a match confidence so lookups can prefer the best match.
type EnhancedLink struct {
	ID         uint64  `gorm:"primaryKey" json:"id"`
	IMDbID     string  `gorm:"column:imdb_id;not null;index" json:"imdb_id"`
	MovieID    uint64  `gorm:"column:movielens_id;not null;index" json:"movielens_id"`
	MatchType  string  `gorm:"column:match_type" json:"match_type"`
	Confidence float64 `gorm:"column:confidence" json:"confidence"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (EnhancedLink) TableName() string {
	return "enhanced_links"
}

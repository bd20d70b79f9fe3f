package models

import (
	"time"
)

// Rating is one user's rating of one movie, in MovieLens ID space.
// The ratings table is what the offline trainer consumes and what the
// popular-movies aggregation runs over.
type Rating struct {
	ID      uint64  `gorm:"primaryKey" json:"id"`
	UserID  uint64  `gorm:"column:user_id;not null;index" json:"user_id"`
	MovieID uint64  `gorm:"column:movie_id;not null;index" json:"movie_id"`
	Rating  float64 `gorm:"not null" json:"rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (Rating) TableName() string {
	return "ratings"
}

package model

import "time"

// Genre classifies songs. A genre cannot be deleted while songs reference it.
type Genre struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GenreUpdate is a partial update; nil fields are left untouched.
type GenreUpdate struct {
	Name *string
}

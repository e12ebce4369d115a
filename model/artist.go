package model

import "time"

// Artist is a song/album owner in the catalog.
type Artist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ArtistUpdate is a partial update; nil fields are left untouched.
type ArtistUpdate struct {
	Name *string
}

package model

import (
	"database/sql"
	"time"
)

// Album groups songs under an artist. ReleaseDate and CoverImage are optional.
type Album struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	ReleaseDate sql.NullString `json:"releaseDate"` // YYYY-MM-DD
	CoverImage  sql.NullString `json:"coverImage"`
	ArtistID    int64          `json:"artistId"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// AlbumUpdate is a partial update; nil fields are left untouched.
type AlbumUpdate struct {
	Title       *string
	ReleaseDate *sql.NullString
	CoverImage  *sql.NullString
	ArtistID    *int64
}

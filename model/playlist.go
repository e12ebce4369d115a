package model

import (
	"database/sql"
	"time"
)

// Playlist is a user-ordered collection of songs.
type Playlist struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	CoverImage  sql.NullString `json:"coverImage"`
	DateCreated string         `json:"dateCreated"` // YYYY-MM-DD
	CreatedAt   time.Time      `json:"createdAt"`
}

// PlaylistUpdate is a partial update; nil fields are left untouched.
type PlaylistUpdate struct {
	Title      *string
	CoverImage *sql.NullString
}

// PlaylistSong is one playlist membership row. Membership is set-like: the
// (PlaylistID, SongID) pair is the key, Position orders the entries.
type PlaylistSong struct {
	PlaylistID int64 `json:"playlistId"`
	SongID     int64 `json:"songId"`
	Position   int   `json:"position"`
}

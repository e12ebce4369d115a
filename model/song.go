package model

import (
	"database/sql"
	"time"
)

// Song is a catalog entry for one audio file. The audio payload lives either
// in the blob store (BlobKey) or on the local filesystem (FilePath); BlobKey
// wins when both are set.
type Song struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title"`
	ArtistID   int64          `json:"artistId"`
	AlbumID    sql.NullInt64  `json:"albumId"`
	GenreID    int64          `json:"genreId"`
	Duration   string         `json:"duration"` // canonical H:MM:SS form
	BlobKey    sql.NullString `json:"-"`
	FilePath   sql.NullString `json:"-"`
	CoverImage sql.NullString `json:"coverImage"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// HasPayload reports whether the song carries any audio payload at all.
func (s *Song) HasPayload() bool {
	return s.BlobKey.Valid || s.FilePath.Valid
}

// SongUpdate is a partial update: nil fields are left untouched. AlbumID uses
// a NullInt64 pointer so callers can distinguish "leave alone" (nil) from
// "clear the album" (&sql.NullInt64{}).
type SongUpdate struct {
	Title      *string
	ArtistID   *int64
	AlbumID    *sql.NullInt64
	GenreID    *int64
	Duration   *string
	BlobKey    *sql.NullString
	FilePath   *sql.NullString
	CoverImage *sql.NullString
}

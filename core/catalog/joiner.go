package catalog

import (
	"melodex/model"
)

// SongWithNames is a song row denormalized with the display names of its
// referenced artist, album and genre, ready for listing responses.
type SongWithNames struct {
	model.Song
	ArtistName string `json:"artist_name"`
	AlbumName  string `json:"album_name,omitempty"`
	GenreName  string `json:"genre_name"`
	Display    string `json:"display_duration"`
}

// Join resolves each song's foreign keys against the given lookup slices.
// A reference that matches no row resolves to an empty name instead of
// failing, so a listing survives dangling ids.
func Join(songs []model.Song, artists []model.Artist, albums []model.Album, genres []model.Genre) []SongWithNames {
	artistByID := make(map[int64]string, len(artists))
	for _, a := range artists {
		artistByID[a.ID] = a.Name
	}
	albumByID := make(map[int64]string, len(albums))
	for _, a := range albums {
		albumByID[a.ID] = a.Title
	}
	genreByID := make(map[int64]string, len(genres))
	for _, g := range genres {
		genreByID[g.ID] = g.Name
	}

	out := make([]SongWithNames, 0, len(songs))
	for _, s := range songs {
		row := SongWithNames{
			Song:       s,
			ArtistName: artistByID[s.ArtistID],
			GenreName:  genreByID[s.GenreID],
			Display:    DisplayDuration(s.Duration),
		}
		if s.AlbumID.Valid {
			row.AlbumName = albumByID[s.AlbumID.Int64]
		}
		out = append(out, row)
	}
	return out
}

package catalog

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"melodex/model"
)

func TestJoin(t *testing.T) {
	songs := []model.Song{
		{ID: 1, Title: "One", ArtistID: 10, AlbumID: sql.NullInt64{Int64: 20, Valid: true}, GenreID: 30, Duration: "0:05:30"},
		{ID: 2, Title: "Two", ArtistID: 10, GenreID: 30, Duration: "0:03:00"},
	}
	artists := []model.Artist{{ID: 10, Name: "The Artist"}}
	albums := []model.Album{{ID: 20, Title: "The Album", ArtistID: 10}}
	genres := []model.Genre{{ID: 30, Name: "Rock"}}

	joined := Join(songs, artists, albums, genres)
	require.Len(t, joined, 2)

	first := joined[0]
	assert.Equal(t, "The Artist", first.ArtistName)
	assert.Equal(t, "The Album", first.AlbumName)
	assert.Equal(t, "Rock", first.GenreName)
	assert.Equal(t, "5:30", first.Display)

	// A song with no album resolves to an empty album name.
	assert.Empty(t, joined[1].AlbumName)
}

func TestJoin_DanglingReferences(t *testing.T) {
	songs := []model.Song{
		{ID: 1, Title: "Orphan", ArtistID: 999, AlbumID: sql.NullInt64{Int64: 888, Valid: true}, GenreID: 777, Duration: "0:02:00"},
	}

	joined := Join(songs, nil, nil, nil)
	require.Len(t, joined, 1)

	row := joined[0]
	assert.Empty(t, row.ArtistName)
	assert.Empty(t, row.AlbumName)
	assert.Empty(t, row.GenreName)
	assert.Equal(t, "Orphan", row.Title, "song fields must survive the join")
}

func TestJoin_Empty(t *testing.T) {
	assert.Empty(t, Join(nil, nil, nil, nil))
}

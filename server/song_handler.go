package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"melodex/core/catalog"
	"melodex/logger"
	"melodex/model"
	"melodex/repository"
)

// GetSongsHandler lists songs. Supports ?artist=, ?album= and ?genre=
// filters, and ?join=1 to return rows denormalized with artist/album/genre
// names and a display-formatted duration.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		songs []model.Song
		err   error
	)
	switch {
	case q.Get("artist") != "":
		var id int64
		if id, err = parseQueryID(q.Get("artist")); err == nil {
			songs, err = h.songRepo.GetByArtist(ctx, id)
		}
	case q.Get("album") != "":
		var id int64
		if id, err = parseQueryID(q.Get("album")); err == nil {
			songs, err = h.songRepo.GetByAlbum(ctx, id)
		}
	case q.Get("genre") != "":
		var id int64
		if id, err = parseQueryID(q.Get("genre")); err == nil {
			songs, err = h.songRepo.GetByGenre(ctx, id)
		}
	default:
		songs, err = h.songRepo.GetAll(ctx)
	}
	if err != nil {
		logger.Error("failed to list songs", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list songs")
		return
	}

	if q.Get("join") == "" {
		respondJSON(w, http.StatusOK, songs)
		return
	}

	artists, err := h.artistRepo.GetAll(ctx)
	if err != nil {
		logger.Error("failed to load artists for join", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list songs")
		return
	}
	albums, err := h.albumRepo.GetAll(ctx)
	if err != nil {
		logger.Error("failed to load albums for join", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list songs")
		return
	}
	genres, err := h.genreRepo.GetAll(ctx)
	if err != nil {
		logger.Error("failed to load genres for join", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list songs")
		return
	}

	respondJSON(w, http.StatusOK, catalog.Join(songs, artists, albums, genres))
}

// GetSongHandler returns one song by id.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid song id")
		return
	}

	song, err := h.songRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get song", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get song")
		return
	}
	if song == nil {
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}
	respondJSON(w, http.StatusOK, song)
}

// CreateSongRequest is the JSON body for creating a song without an upload.
// The payload reference (blob key or file path) comes from a prior upload or
// from the import folder.
type CreateSongRequest struct {
	Title    string `json:"title"`
	ArtistID int64  `json:"artistId"`
	AlbumID  *int64 `json:"albumId"`
	GenreID  int64  `json:"genreId"`
	Duration string `json:"duration"`
}

// CreateSongHandler creates a song row. Artist and genre are mandatory and
// must exist; album is optional.
func (h *APIHandler) CreateSongHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSongRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.ArtistID == 0 || req.GenreID == 0 {
		respondError(w, http.StatusBadRequest, "Title, artist and genre are required")
		return
	}

	song := &model.Song{
		Title:    req.Title,
		ArtistID: req.ArtistID,
		GenreID:  req.GenreID,
	}
	if req.AlbumID != nil {
		song.AlbumID.Int64 = *req.AlbumID
		song.AlbumID.Valid = true
	}
	if req.Duration != "" {
		secs, err := catalog.ParseDuration(req.Duration)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid duration format")
			return
		}
		song.Duration = catalog.FormatCanonical(secs)
	}

	if ok := h.checkSongRefs(w, r, song); !ok {
		return
	}

	id, err := h.songRepo.Create(r.Context(), song)
	if err != nil {
		logger.Error("failed to create song", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create song")
		return
	}
	song.ID = id
	respondJSON(w, http.StatusCreated, song)
}

// checkSongRefs verifies the song's artist, genre and (optional) album
// exist, writing the error response itself when they do not.
func (h *APIHandler) checkSongRefs(w http.ResponseWriter, r *http.Request, song *model.Song) bool {
	artist, err := h.artistRepo.GetByID(r.Context(), song.ArtistID)
	if err != nil {
		logger.Error("failed to check artist", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create song")
		return false
	}
	if artist == nil {
		respondError(w, http.StatusBadRequest, "Artist does not exist")
		return false
	}

	genre, err := h.genreRepo.GetByID(r.Context(), song.GenreID)
	if err != nil {
		logger.Error("failed to check genre", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create song")
		return false
	}
	if genre == nil {
		respondError(w, http.StatusBadRequest, "Genre does not exist")
		return false
	}

	if song.AlbumID.Valid {
		album, err := h.albumRepo.GetByID(r.Context(), song.AlbumID.Int64)
		if err != nil {
			logger.Error("failed to check album", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Failed to create song")
			return false
		}
		if album == nil {
			respondError(w, http.StatusBadRequest, "Album does not exist")
			return false
		}
	}
	return true
}

// UpdateSongHandler applies a partial update. Sending "albumId": null clears
// the album reference; omitting it leaves the reference alone.
func (h *APIHandler) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid song id")
		return
	}

	var body struct {
		Title    *string         `json:"title"`
		ArtistID *int64          `json:"artistId"`
		AlbumID  json.RawMessage `json:"albumId"`
		GenreID  *int64          `json:"genreId"`
		Duration *string         `json:"duration"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := model.SongUpdate{
		Title:    body.Title,
		ArtistID: body.ArtistID,
		GenreID:  body.GenreID,
	}
	if body.Duration != nil {
		secs, err := catalog.ParseDuration(*body.Duration)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid duration format")
			return
		}
		canonical := catalog.FormatCanonical(secs)
		updates.Duration = &canonical
	}
	if len(body.AlbumID) > 0 {
		var albumID sql.NullInt64
		if string(body.AlbumID) != "null" {
			if err := json.Unmarshal(body.AlbumID, &albumID.Int64); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid album id")
				return
			}
			albumID.Valid = true
		}
		updates.AlbumID = &albumID
	}

	if err := h.songRepo.Update(r.Context(), id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Song not found")
			return
		}
		logger.Error("failed to update song", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update song")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// DeleteSongHandler deletes the song after removing its playlist
// memberships. The artist and album rows are left in place even when this
// was their last song.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid song id")
		return
	}

	if err := h.songRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Song not found")
			return
		}
		logger.Error("failed to delete song", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete song")
		return
	}

	// Any live media URL for this song is revoked so playback of a deleted
	// song fails fast instead of dangling.
	h.urls.Release(id)

	logger.Info("deleted song", logger.Int64("id", id))
	respondJSON(w, http.StatusNoContent, nil)
}

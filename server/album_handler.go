package server

import (
	"errors"
	"net/http"

	"melodex/logger"
	"melodex/model"
	"melodex/repository"
)

// GetAlbumsHandler lists albums, optionally filtered by ?artist=<id>.
func (h *APIHandler) GetAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	var (
		albums []model.Album
		err    error
	)
	if artistParam := r.URL.Query().Get("artist"); artistParam != "" {
		artistID, perr := parseQueryID(artistParam)
		if perr != nil {
			respondError(w, http.StatusBadRequest, "Invalid artist id")
			return
		}
		albums, err = h.albumRepo.GetByArtist(r.Context(), artistID)
	} else {
		albums, err = h.albumRepo.GetAll(r.Context())
	}
	if err != nil {
		logger.Error("failed to list albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list albums")
		return
	}
	respondJSON(w, http.StatusOK, albums)
}

// GetAlbumHandler returns one album by id.
func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid album id")
		return
	}

	album, err := h.albumRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get album", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get album")
		return
	}
	if album == nil {
		respondError(w, http.StatusNotFound, "Album not found")
		return
	}
	respondJSON(w, http.StatusOK, album)
}

// GetAlbumSongsHandler lists the songs on an album.
func (h *APIHandler) GetAlbumSongsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid album id")
		return
	}

	songs, err := h.songRepo.GetByAlbum(r.Context(), id)
	if err != nil {
		logger.Error("failed to list album songs", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list album songs")
		return
	}
	respondJSON(w, http.StatusOK, songs)
}

// CreateAlbumHandler creates an album. The owning artist must exist.
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	var album model.Album
	if err := decodeBody(r, &album); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if album.Title == "" || album.ArtistID == 0 {
		respondError(w, http.StatusBadRequest, "Album title and artist are required")
		return
	}

	artist, err := h.artistRepo.GetByID(r.Context(), album.ArtistID)
	if err != nil {
		logger.Error("failed to check artist", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create album")
		return
	}
	if artist == nil {
		respondError(w, http.StatusBadRequest, "Artist does not exist")
		return
	}

	id, err := h.albumRepo.Create(r.Context(), &album)
	if err != nil {
		logger.Error("failed to create album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create album")
		return
	}
	album.ID = id
	respondJSON(w, http.StatusCreated, album)
}

// UpdateAlbumHandler applies a partial update.
func (h *APIHandler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid album id")
		return
	}

	var updates model.AlbumUpdate
	if err := decodeBody(r, &updates); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.albumRepo.Update(r.Context(), id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Album not found")
			return
		}
		logger.Error("failed to update album", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update album")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// DeleteAlbumHandler deletes the album. Its songs survive with their album
// reference cleared.
func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid album id")
		return
	}

	if err := h.albumRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Album not found")
			return
		}
		logger.Error("failed to delete album", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete album")
		return
	}

	logger.Info("deleted album", logger.Int64("id", id))
	respondJSON(w, http.StatusNoContent, nil)
}

package server

import (
	"errors"
	"net/http"

	"melodex/logger"
	"melodex/model"
	"melodex/repository"
)

// GetArtistsHandler lists all artists.
func (h *APIHandler) GetArtistsHandler(w http.ResponseWriter, r *http.Request) {
	artists, err := h.artistRepo.GetAll(r.Context())
	if err != nil {
		logger.Error("failed to list artists", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list artists")
		return
	}
	respondJSON(w, http.StatusOK, artists)
}

// GetArtistHandler returns one artist by id.
func (h *APIHandler) GetArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid artist id")
		return
	}

	artist, err := h.artistRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get artist", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get artist")
		return
	}
	if artist == nil {
		respondError(w, http.StatusNotFound, "Artist not found")
		return
	}
	respondJSON(w, http.StatusOK, artist)
}

// CreateArtistHandler creates an artist.
func (h *APIHandler) CreateArtistHandler(w http.ResponseWriter, r *http.Request) {
	var artist model.Artist
	if err := decodeBody(r, &artist); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if artist.Name == "" {
		respondError(w, http.StatusBadRequest, "Artist name is required")
		return
	}

	id, err := h.artistRepo.Create(r.Context(), &artist)
	if err != nil {
		logger.Error("failed to create artist", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create artist")
		return
	}
	artist.ID = id
	respondJSON(w, http.StatusCreated, artist)
}

// UpdateArtistHandler applies a partial update.
func (h *APIHandler) UpdateArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid artist id")
		return
	}

	var updates model.ArtistUpdate
	if err := decodeBody(r, &updates); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.artistRepo.Update(r.Context(), id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Artist not found")
			return
		}
		logger.Error("failed to update artist", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update artist")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// DeleteArtistHandler deletes the artist and everything it owns: its songs
// (with their playlist memberships) and its albums.
func (h *APIHandler) DeleteArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid artist id")
		return
	}

	if err := h.artistRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Artist not found")
			return
		}
		logger.Error("failed to delete artist", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete artist")
		return
	}

	logger.Info("deleted artist", logger.Int64("id", id))
	respondJSON(w, http.StatusNoContent, nil)
}

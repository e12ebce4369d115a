package server

import (
	"errors"
	"net/http"

	"melodex/logger"
	"melodex/model"
	"melodex/repository"
)

// GetGenresHandler lists all genres.
func (h *APIHandler) GetGenresHandler(w http.ResponseWriter, r *http.Request) {
	genres, err := h.genreRepo.GetAll(r.Context())
	if err != nil {
		logger.Error("failed to list genres", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list genres")
		return
	}
	respondJSON(w, http.StatusOK, genres)
}

// GetGenreHandler returns one genre by id.
func (h *APIHandler) GetGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid genre id")
		return
	}

	genre, err := h.genreRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get genre", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get genre")
		return
	}
	if genre == nil {
		respondError(w, http.StatusNotFound, "Genre not found")
		return
	}
	respondJSON(w, http.StatusOK, genre)
}

// CreateGenreHandler creates a genre.
func (h *APIHandler) CreateGenreHandler(w http.ResponseWriter, r *http.Request) {
	var genre model.Genre
	if err := decodeBody(r, &genre); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if genre.Name == "" {
		respondError(w, http.StatusBadRequest, "Genre name is required")
		return
	}

	id, err := h.genreRepo.Create(r.Context(), &genre)
	if err != nil {
		logger.Error("failed to create genre", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create genre")
		return
	}
	genre.ID = id
	respondJSON(w, http.StatusCreated, genre)
}

// UpdateGenreHandler applies a partial update.
func (h *APIHandler) UpdateGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid genre id")
		return
	}

	var updates model.GenreUpdate
	if err := decodeBody(r, &updates); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.genreRepo.Update(r.Context(), id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Genre not found")
			return
		}
		logger.Error("failed to update genre", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update genre")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// DeleteGenreHandler deletes a genre. Deletion is refused while any song
// still references the genre; the failure message is shown to the user as-is.
func (h *APIHandler) DeleteGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid genre id")
		return
	}

	if err := h.genreRepo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrGenreInUse):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			respondError(w, http.StatusNotFound, "Genre not found")
		default:
			logger.Error("failed to delete genre", logger.Int64("id", id), logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Failed to delete genre")
		}
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

package server

import (
	"errors"
	"net/http"

	"melodex/logger"
	"melodex/model"
	"melodex/repository"
)

// GetPlaylistsHandler lists all playlists.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlistRepo.GetAll(r.Context())
	if err != nil {
		logger.Error("failed to list playlists", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list playlists")
		return
	}
	respondJSON(w, http.StatusOK, playlists)
}

// GetPlaylistHandler returns one playlist with its songs in order.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist id")
		return
	}

	playlist, err := h.playlistRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get playlist", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get playlist")
		return
	}
	if playlist == nil {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}

	songs, err := h.playlistRepo.GetSongs(r.Context(), id)
	if err != nil {
		logger.Error("failed to get playlist songs", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get playlist")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		model.Playlist
		Songs []model.Song `json:"songs"`
	}{Playlist: *playlist, Songs: songs})
}

// CreatePlaylistHandler creates a playlist.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var playlist model.Playlist
	if err := decodeBody(r, &playlist); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if playlist.Title == "" {
		respondError(w, http.StatusBadRequest, "Playlist title is required")
		return
	}

	id, err := h.playlistRepo.Create(r.Context(), &playlist)
	if err != nil {
		logger.Error("failed to create playlist", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create playlist")
		return
	}
	playlist.ID = id
	respondJSON(w, http.StatusCreated, playlist)
}

// UpdatePlaylistHandler applies a partial update.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist id")
		return
	}

	var updates model.PlaylistUpdate
	if err := decodeBody(r, &updates); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.playlistRepo.Update(r.Context(), id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("failed to update playlist", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update playlist")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// DeletePlaylistHandler deletes a playlist and its memberships. Songs are
// untouched.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist id")
		return
	}

	if err := h.playlistRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("failed to delete playlist", logger.Int64("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete playlist")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// AddPlaylistSongHandler adds one song; re-adding is a silent no-op.
func (h *APIHandler) AddPlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist id")
		return
	}
	songID, err := pathID(r, "song_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid song id")
		return
	}

	song, err := h.songRepo.GetByID(r.Context(), songID)
	if err != nil {
		logger.Error("failed to check song", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to add song")
		return
	}
	if song == nil {
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	if err := h.playlistRepo.AddSong(r.Context(), id, songID); err != nil {
		logger.Error("failed to add song to playlist",
			logger.Int64("playlist_id", id), logger.Int64("song_id", songID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to add song")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// RemovePlaylistSongHandler removes one song; removing an absent song is a
// no-op.
func (h *APIHandler) RemovePlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist id")
		return
	}
	songID, err := pathID(r, "song_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid song id")
		return
	}

	if err := h.playlistRepo.RemoveSong(r.Context(), id, songID); err != nil {
		logger.Error("failed to remove song from playlist",
			logger.Int64("playlist_id", id), logger.Int64("song_id", songID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to remove song")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// SetPlaylistSongsHandler replaces the playlist's membership wholesale with
// the given song ids, in order.
func (h *APIHandler) SetPlaylistSongsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid playlist id")
		return
	}

	var body struct {
		SongIDs []int64 `json:"songIds"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.playlistRepo.SetSongs(r.Context(), id, body.SongIDs); err != nil {
		logger.Error("failed to set playlist songs",
			logger.Int64("playlist_id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to set playlist songs")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

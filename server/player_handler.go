package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"melodex/cache"
	"melodex/logger"
	"melodex/model"
	"melodex/storage"
)

// buildTrack resolves a song into a playable track: a granted media URL plus
// the display names of its relations.
func (h *APIHandler) buildTrack(ctx context.Context, songID int64) (model.Track, error) {
	song, err := h.songRepo.GetByID(ctx, songID)
	if err != nil {
		return model.Track{}, err
	}
	if song == nil {
		return model.Track{}, fmt.Errorf("song %d not found", songID)
	}

	url, err := h.urls.Get(song)
	if err != nil {
		return model.Track{}, err
	}

	track := model.Track{SongID: song.ID, URL: url, Title: song.Title}
	if artist, err := h.artistRepo.GetByID(ctx, song.ArtistID); err == nil && artist != nil {
		track.Artist = artist.Name
	}
	if song.AlbumID.Valid {
		if album, err := h.albumRepo.GetByID(ctx, song.AlbumID.Int64); err == nil && album != nil {
			track.Album = album.Title
		}
	}
	if song.CoverImage.Valid {
		track.Cover = song.CoverImage.String
	}
	return track, nil
}

// PlayerStateHandler returns the current playback state.
func (h *APIHandler) PlayerStateHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.State())
}

// PlayTrackHandler starts playing the given song, re-aligning the queue
// cursor when the song is already queued.
func (h *APIHandler) PlayTrackHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SongID int64 `json:"songId"`
	}
	if err := decodeBody(r, &body); err != nil || body.SongID == 0 {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	track, err := h.buildTrack(r.Context(), body.SongID)
	if err != nil {
		if errors.Is(err, storage.ErrNoFileData) {
			respondError(w, http.StatusConflict, "Song has no file data")
			return
		}
		logger.Error("failed to build track",
			logger.Int64("song_id", body.SongID), logger.ErrorField(err))
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	if err := h.engine.PlayTrack(track); err != nil {
		logger.Error("failed to play track",
			logger.Int64("song_id", body.SongID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to play track")
		return
	}

	h.saveSession(r)
	respondJSON(w, http.StatusOK, h.engine.State())
}

// TogglePlayPauseHandler pauses or resumes the current track.
func (h *APIHandler) TogglePlayPauseHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.TogglePlayPause(); err != nil {
		logger.Error("failed to toggle playback", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to toggle playback")
		return
	}
	respondJSON(w, http.StatusOK, h.engine.State())
}

// SeekHandler moves playback to an absolute offset in seconds.
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Seconds float64 `json:"seconds"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.engine.Seek(body.Seconds); err != nil {
		logger.Error("failed to seek", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to seek")
		return
	}
	respondJSON(w, http.StatusOK, h.engine.State())
}

// SetVolumeHandler applies a volume level; out-of-range levels are clamped
// to [0, 1].
func (h *APIHandler) SetVolumeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level float64 `json:"level"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.engine.SetVolume(body.Level); err != nil {
		logger.Error("failed to set volume", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to set volume")
		return
	}

	h.saveSession(r)
	respondJSON(w, http.StatusOK, h.engine.State())
}

// PlayNextHandler advances the queue; a no-op at the end.
func (h *APIHandler) PlayNextHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.PlayNext(); err != nil {
		logger.Error("failed to play next", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to play next")
		return
	}
	h.saveSession(r)
	respondJSON(w, http.StatusOK, h.engine.State())
}

// PlayPreviousHandler retreats the queue; a no-op at the start.
func (h *APIHandler) PlayPreviousHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.PlayPrevious(); err != nil {
		logger.Error("failed to play previous", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to play previous")
		return
	}
	h.saveSession(r)
	respondJSON(w, http.StatusOK, h.engine.State())
}

// AddToQueueHandler appends a song's track to the queue without moving the
// cursor.
func (h *APIHandler) AddToQueueHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SongID int64 `json:"songId"`
	}
	if err := decodeBody(r, &body); err != nil || body.SongID == 0 {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	track, err := h.buildTrack(r.Context(), body.SongID)
	if err != nil {
		if errors.Is(err, storage.ErrNoFileData) {
			respondError(w, http.StatusConflict, "Song has no file data")
			return
		}
		respondError(w, http.StatusNotFound, "Song not found")
		return
	}

	h.engine.AddToQueue(track)
	h.saveSession(r)
	respondJSON(w, http.StatusOK, h.engine.State())
}

// SetQueueHandler replaces the queue with tracks for the given songs, in
// order. Songs without file data are skipped rather than failing the whole
// queue. The cursor is left alone; play a track afterwards to re-align it.
func (h *APIHandler) SetQueueHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SongIDs []int64 `json:"songIds"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tracks := make([]model.Track, 0, len(body.SongIDs))
	for _, id := range body.SongIDs {
		track, err := h.buildTrack(r.Context(), id)
		if err != nil {
			logger.Warn("skipping unplayable song in queue",
				logger.Int64("song_id", id), logger.ErrorField(err))
			continue
		}
		tracks = append(tracks, track)
	}

	h.engine.SetQueue(tracks)
	h.saveSession(r)
	respondJSON(w, http.StatusOK, h.engine.State())
}

// ResetPlayerHandler tears the session down: playback stops, the queue
// empties, every live media URL is revoked and the saved session dropped.
func (h *APIHandler) ResetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Reset(); err != nil {
		logger.Error("failed to reset player", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to reset player")
		return
	}

	h.urls.ReleaseAll()

	if userID, err := GetUserIDFromContext(r.Context()); err == nil {
		if err := h.sessions.Clear(r.Context(), userID); err != nil {
			logger.Warn("failed to clear saved session", logger.ErrorField(err))
		}
	}
	respondJSON(w, http.StatusOK, h.engine.State())
}

// rebuildQueue resolves saved song ids into playable tracks. Unplayable
// songs are dropped, so the saved cursor is re-mapped to the position its
// song ends up at; -1 when that song is itself among the dropped.
func rebuildQueue(ids []int64, savedCursor int, build func(int64) (model.Track, error)) ([]model.Track, int) {
	tracks := make([]model.Track, 0, len(ids))
	cursor := -1
	for i, id := range ids {
		track, err := build(id)
		if err != nil {
			logger.Warn("skipping song from saved session",
				logger.Int64("song_id", id), logger.ErrorField(err))
			continue
		}
		if i == savedCursor {
			cursor = len(tracks)
		}
		tracks = append(tracks, track)
	}
	return tracks, cursor
}

// RestoreSessionHandler rebuilds the queue from the user's saved session.
// Tracks are re-resolved, so old transient URLs never leak back in.
func (h *APIHandler) RestoreSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	session, err := h.sessions.Load(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load session", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "No saved session")
		return
	}

	tracks, cursor := rebuildQueue(session.SongIDs, session.Cursor, func(id int64) (model.Track, error) {
		return h.buildTrack(r.Context(), id)
	})

	h.engine.SetQueue(tracks)
	if err := h.engine.SetVolume(session.Volume); err != nil {
		logger.Warn("failed to restore volume", logger.ErrorField(err))
	}
	if cursor >= 0 {
		if err := h.engine.PlayTrack(tracks[cursor]); err != nil {
			logger.Warn("failed to resume saved track", logger.ErrorField(err))
		}
	}

	respondJSON(w, http.StatusOK, h.engine.State())
}

// saveSession persists the queue, cursor and volume for the authenticated
// user. Failures are logged, never surfaced: session persistence is best
// effort.
func (h *APIHandler) saveSession(r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		return
	}

	state := h.engine.State()
	session := cache.Session{
		SongIDs: make([]int64, 0, len(state.Queue)),
		Cursor:  state.Cursor,
		Volume:  state.Volume,
	}
	for _, t := range state.Queue {
		session.SongIDs = append(session.SongIDs, t.SongID)
	}

	if err := h.sessions.Save(r.Context(), userID, session); err != nil {
		logger.Warn("failed to save session", logger.ErrorField(err))
	}
}

package server

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"melodex/logger"
	"melodex/storage"
)

// MediaHandler streams audio for a granted media URL. The token comes from
// the resolver; expired or revoked tokens are a 404, and both backends serve
// through ServeContent so Range requests work for scrubbing.
func (h *APIHandler) MediaHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	payload, ok := h.resolver.Lookup(token)
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown or expired media URL")
		return
	}

	switch payload.Kind {
	case storage.PayloadBlob:
		h.serveBlob(w, r, payload)
	case storage.PayloadFile:
		h.serveFile(w, r, payload)
	default:
		respondError(w, http.StatusInternalServerError, "Unknown payload kind")
	}
}

func (h *APIHandler) serveBlob(w http.ResponseWriter, r *http.Request, p storage.Payload) {
	info, err := h.blobs.Stat(r.Context(), p.Ref)
	if err != nil {
		logger.Warn("media object missing",
			logger.Int64("song_id", p.SongID), logger.String("key", p.Ref))
		respondError(w, http.StatusNotFound, "Audio not found")
		return
	}

	obj, err := h.blobs.Get(r.Context(), p.Ref)
	if err != nil {
		logger.Error("failed to open media object",
			logger.String("key", p.Ref), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to stream audio")
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", contentTypeFor(strings.ToLower(filepath.Ext(p.Ref))))
	http.ServeContent(w, r, filepath.Base(p.Ref), info.LastModified, obj)
}

func (h *APIHandler) serveFile(w http.ResponseWriter, r *http.Request, p storage.Payload) {
	f, err := h.files.Open(p.Ref)
	if err != nil {
		logger.Warn("media file missing",
			logger.Int64("song_id", p.SongID), logger.String("path", p.Ref))
		respondError(w, http.StatusNotFound, "Audio not found")
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if st, err := f.Stat(); err == nil {
		modTime = st.ModTime()
	}

	w.Header().Set("Content-Type", contentTypeFor(strings.ToLower(filepath.Ext(p.Ref))))
	http.ServeContent(w, r, filepath.Base(p.Ref), modTime, f)
}

// RevokeMediaHandler releases a granted media URL before its TTL runs out.
// The body carries {"url": "..."}; revoking an unknown URL succeeds.
func (h *APIHandler) RevokeMediaHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := decodeBody(r, &body); err != nil || body.URL == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.resolver.Revoke(body.URL)
	respondJSON(w, http.StatusNoContent, nil)
}

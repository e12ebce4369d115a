package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"melodex/cache"
	"melodex/config"
	"melodex/core/player"
	"melodex/logger"
	"melodex/repository"
	"melodex/storage"
)

// APIHandler carries every dependency the HTTP layer needs.
type APIHandler struct {
	songRepo     repository.SongRepository
	artistRepo   repository.ArtistRepository
	albumRepo    repository.AlbumRepository
	genreRepo    repository.GenreRepository
	playlistRepo repository.PlaylistRepository
	userRepo     repository.UserRepository

	blobs    *storage.MinioStore
	files    *storage.LocalStore
	resolver *storage.Resolver
	urls     *storage.URLSet

	engine   *player.Engine
	sessions *cache.SessionCache

	cfg *config.Config
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(
	songRepo repository.SongRepository,
	artistRepo repository.ArtistRepository,
	albumRepo repository.AlbumRepository,
	genreRepo repository.GenreRepository,
	playlistRepo repository.PlaylistRepository,
	userRepo repository.UserRepository,
	blobs *storage.MinioStore,
	files *storage.LocalStore,
	resolver *storage.Resolver,
	engine *player.Engine,
	sessions *cache.SessionCache,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		songRepo:     songRepo,
		artistRepo:   artistRepo,
		albumRepo:    albumRepo,
		genreRepo:    genreRepo,
		playlistRepo: playlistRepo,
		userRepo:     userRepo,
		blobs:        blobs,
		files:        files,
		resolver:     resolver,
		urls:         storage.NewURLSet(resolver),
		engine:       engine,
		sessions:     sessions,
		cfg:          cfg,
	}
}

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// respondError writes a JSON error body the frontend displays verbatim.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// pathID pulls a numeric {id} path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// parseQueryID parses a numeric query-string value.
func parseQueryID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"melodex/cache"
	"melodex/config"
	"melodex/core/importer"
	"melodex/core/player"
	"melodex/db"
	"melodex/logger"
	"melodex/model"
	"melodex/repository"
	"melodex/storage"
)

// Start wires every layer together and runs the HTTP server until SIGINT or
// SIGTERM.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect gorm", logger.ErrorField(err))
	}
	defer db.CloseGormDB()
	if err := db.AutoMigrateModels(&model.User{}); err != nil {
		logger.Fatal("failed to migrate user tables", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, err := storage.NewMinioStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize object storage", logger.ErrorField(err))
	}

	files, err := storage.NewLocalStore(cfg.AudioDir)
	if err != nil {
		logger.Fatal("failed to initialize local storage", logger.ErrorField(err))
	}

	resolver := storage.NewResolver("/media",
		time.Duration(cfg.MediaURLTTLMinutes)*time.Minute)

	songRepo := repository.NewMySQLSongRepository(db.DB)
	artistRepo := repository.NewMySQLArtistRepository(db.DB)
	albumRepo := repository.NewMySQLAlbumRepository(db.DB)
	genreRepo := repository.NewMySQLGenreRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	userRepo := repository.NewGormUserRepository(db.GormDB)

	transport := NewRemoteTransport()
	engine := player.NewEngine(transport)
	defer engine.Close()

	sessions := cache.NewSessionCache()

	apiHandler := NewAPIHandler(
		songRepo, artistRepo, albumRepo, genreRepo, playlistRepo, userRepo,
		blobs, files, resolver, engine, sessions, cfg)

	// Watch-folder importer runs for the lifetime of the server.
	watcher := importer.NewWatcher(cfg.ImportDir, songRepo, artistRepo, albumRepo, genreRepo)
	go func() {
		if err := watcher.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("importer stopped", logger.ErrorField(err))
		}
	}()

	// Expired media grants are swept periodically; lookups also drop them
	// lazily, this just bounds the table.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := resolver.Sweep(); removed > 0 {
					logger.Debug("swept expired media grants", logger.Int("removed", removed))
				}
			}
		}
	}()

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	// Auth
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Artists
	router.HandleFunc("/api/artists", apiHandler.AuthMiddleware(apiHandler.GetArtistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/artists", apiHandler.AuthMiddleware(apiHandler.CreateArtistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/artists/{id}", apiHandler.AuthMiddleware(apiHandler.GetArtistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateArtistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/artists/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteArtistHandler)).Methods(http.MethodDelete)

	// Albums
	router.HandleFunc("/api/albums", apiHandler.AuthMiddleware(apiHandler.GetAlbumsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/albums", apiHandler.AuthMiddleware(apiHandler.CreateAlbumHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/albums/{id}", apiHandler.AuthMiddleware(apiHandler.GetAlbumHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/albums/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateAlbumHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/albums/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteAlbumHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/albums/{id}/songs", apiHandler.AuthMiddleware(apiHandler.GetAlbumSongsHandler)).Methods(http.MethodGet)

	// Genres
	router.HandleFunc("/api/genres", apiHandler.AuthMiddleware(apiHandler.GetGenresHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/genres", apiHandler.AuthMiddleware(apiHandler.CreateGenreHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/genres/{id}", apiHandler.AuthMiddleware(apiHandler.GetGenreHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/genres/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateGenreHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/genres/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteGenreHandler)).Methods(http.MethodDelete)

	// Songs
	router.HandleFunc("/api/songs", apiHandler.AuthMiddleware(apiHandler.GetSongsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/songs", apiHandler.AuthMiddleware(apiHandler.CreateSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}", apiHandler.AuthMiddleware(apiHandler.GetSongHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateSongHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/songs/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteSongHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/upload", apiHandler.AuthMiddleware(apiHandler.UploadSongHandler)).Methods(http.MethodPost)

	// Playlists
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.UpdatePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/songs", apiHandler.AuthMiddleware(apiHandler.SetPlaylistSongsHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}/songs/{song_id}", apiHandler.AuthMiddleware(apiHandler.AddPlaylistSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/songs/{song_id}", apiHandler.AuthMiddleware(apiHandler.RemovePlaylistSongHandler)).Methods(http.MethodDelete)

	// Player
	router.HandleFunc("/api/player", apiHandler.AuthMiddleware(apiHandler.PlayerStateHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/play", apiHandler.AuthMiddleware(apiHandler.PlayTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/toggle", apiHandler.AuthMiddleware(apiHandler.TogglePlayPauseHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/seek", apiHandler.AuthMiddleware(apiHandler.SeekHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/volume", apiHandler.AuthMiddleware(apiHandler.SetVolumeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/next", apiHandler.AuthMiddleware(apiHandler.PlayNextHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/previous", apiHandler.AuthMiddleware(apiHandler.PlayPreviousHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/queue", apiHandler.AuthMiddleware(apiHandler.AddToQueueHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/queue", apiHandler.AuthMiddleware(apiHandler.SetQueueHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/player/reset", apiHandler.AuthMiddleware(apiHandler.ResetPlayerHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/restore", apiHandler.AuthMiddleware(apiHandler.RestoreSessionHandler)).Methods(http.MethodPost)

	// Media streaming and URL lifecycle
	router.HandleFunc("/media/{token}", apiHandler.MediaHandler).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/media/revoke", apiHandler.AuthMiddleware(apiHandler.RevokeMediaHandler)).Methods(http.MethodPost)

	// Playback client websocket
	router.HandleFunc("/ws/player", apiHandler.PlayerWebSocketHandler(transport))

	// Cover images straight from the blob store.
	router.PathPrefix("/covers/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		objectKey := strings.TrimPrefix(r.URL.Path, "/")

		reqCtx, cancelReq := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancelReq()

		obj, err := blobs.Get(reqCtx, objectKey)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer obj.Close()

		ext := ""
		if i := strings.LastIndex(objectKey, "."); i >= 0 {
			ext = strings.ToLower(objectKey[i:])
		}
		w.Header().Set("Content-Type", coverContentType(ext))
		w.Header().Set("Cache-Control", "public, max-age=31536000")
		if _, err := io.Copy(w, obj); err != nil {
			logger.Warn("failed to serve cover", logger.ErrorField(err))
		}
	})

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

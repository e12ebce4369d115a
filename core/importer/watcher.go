// Package importer watches a drop folder and files new audio into the
// catalog automatically.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"melodex/core/catalog"
	"melodex/core/meta"
	"melodex/logger"
	"melodex/model"
	"melodex/repository"
)

const (
	fallbackArtist = "Unknown Artist"
	fallbackGenre  = "Unknown"

	// settleDelay gives a file being copied into the folder time to finish
	// before we probe it.
	settleDelay = 2 * time.Second
)

var supportedExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
}

// Watcher imports audio files dropped into a directory. Imported songs keep
// their file in place and reference it by path.
type Watcher struct {
	dir     string
	songs   repository.SongRepository
	artists repository.ArtistRepository
	albums  repository.AlbumRepository
	genres  repository.GenreRepository
}

func NewWatcher(dir string, songs repository.SongRepository, artists repository.ArtistRepository,
	albums repository.AlbumRepository, genres repository.GenreRepository) *Watcher {
	return &Watcher{
		dir:     dir,
		songs:   songs,
		artists: artists,
		albums:  albums,
		genres:  genres,
	}
}

// Run scans the folder once, then blocks on filesystem events until the
// context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create import dir %s: %w", w.dir, err)
	}

	if err := w.scan(ctx); err != nil {
		logger.Warn("initial import scan failed", logger.ErrorField(err))
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logger.Info("watching import folder", logger.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !supportedExts[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			// Let the writer finish before probing.
			time.Sleep(settleDelay)
			if err := w.importFile(ctx, ev.Name); err != nil {
				logger.Error("import failed",
					logger.String("path", ev.Name), logger.ErrorField(err))
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", logger.ErrorField(err))
		}
	}
}

// scan imports everything already sitting in the folder.
func (w *Watcher) scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read import dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !supportedExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if err := w.importFile(ctx, path); err != nil {
			logger.Error("import failed",
				logger.String("path", path), logger.ErrorField(err))
		}
	}
	return nil
}

// importFile probes one file and creates the catalog rows it implies. A file
// whose path is already referenced by a song is skipped, which makes a
// re-scan of the folder safe.
func (w *Watcher) importFile(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	imported, err := w.alreadyImported(ctx, abs)
	if err != nil {
		return err
	}
	if imported {
		return nil
	}

	info, err := meta.Probe(abs)
	if err != nil {
		return fmt.Errorf("failed to probe %s: %w", abs, err)
	}

	artistID, err := w.findOrCreateArtist(ctx, info.Artist)
	if err != nil {
		return err
	}
	genreID, err := w.findOrCreateGenre(ctx, info.Genre)
	if err != nil {
		return err
	}
	albumID, err := w.findOrCreateAlbum(ctx, info.Album, artistID)
	if err != nil {
		return err
	}

	song := &model.Song{
		Title:    info.Title,
		ArtistID: artistID,
		AlbumID:  albumID,
		GenreID:  genreID,
		Duration: catalog.FormatCanonical(info.DurationSeconds),
		FilePath: sql.NullString{String: abs, Valid: true},
	}
	id, err := w.songs.Create(ctx, song)
	if err != nil {
		return fmt.Errorf("failed to create song for %s: %w", abs, err)
	}

	logger.Info("imported song",
		logger.Int64("song_id", id),
		logger.String("title", song.Title),
		logger.String("path", abs))
	return nil
}

func (w *Watcher) alreadyImported(ctx context.Context, path string) (bool, error) {
	songs, err := w.songs.GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list songs: %w", err)
	}
	for _, s := range songs {
		if s.FilePath.Valid && s.FilePath.String == path {
			return true, nil
		}
	}
	return false, nil
}

func (w *Watcher) findOrCreateArtist(ctx context.Context, name string) (int64, error) {
	if name == "" {
		name = fallbackArtist
	}
	artist, err := w.artists.GetByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up artist %q: %w", name, err)
	}
	if artist != nil {
		return artist.ID, nil
	}
	return w.artists.Create(ctx, &model.Artist{Name: name})
}

func (w *Watcher) findOrCreateGenre(ctx context.Context, name string) (int64, error) {
	if name == "" {
		name = fallbackGenre
	}
	genre, err := w.genres.GetByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up genre %q: %w", name, err)
	}
	if genre != nil {
		return genre.ID, nil
	}
	return w.genres.Create(ctx, &model.Genre{Name: name})
}

// findOrCreateAlbum matches by title within the artist's albums. An empty
// title means the song has no album.
func (w *Watcher) findOrCreateAlbum(ctx context.Context, title string, artistID int64) (sql.NullInt64, error) {
	if title == "" {
		return sql.NullInt64{}, nil
	}

	albums, err := w.albums.GetByArtist(ctx, artistID)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("failed to list albums for artist %d: %w", artistID, err)
	}
	for _, a := range albums {
		if a.Title == title {
			return sql.NullInt64{Int64: a.ID, Valid: true}, nil
		}
	}

	id, err := w.albums.Create(ctx, &model.Album{Title: title, ArtistID: artistID})
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("failed to create album %q: %w", title, err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"melodex/logger"
	"melodex/model"
)

// SongRepository defines the interface for song data operations.
type SongRepository interface {
	GetAll(ctx context.Context) ([]model.Song, error)
	GetByID(ctx context.Context, id int64) (*model.Song, error)
	GetByArtist(ctx context.Context, artistID int64) ([]model.Song, error)
	GetByAlbum(ctx context.Context, albumID int64) ([]model.Song, error)
	GetByGenre(ctx context.Context, genreID int64) ([]model.Song, error)
	Create(ctx context.Context, song *model.Song) (int64, error)
	Update(ctx context.Context, id int64, updates model.SongUpdate) error
	Delete(ctx context.Context, id int64) error
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

const songColumns = "song_id, title, artist_id, album_id, genre_id, duration, blob_key, file_path, cover_image, created_at"

func scanSong(row interface{ Scan(...interface{}) error }) (model.Song, error) {
	var s model.Song
	err := row.Scan(&s.ID, &s.Title, &s.ArtistID, &s.AlbumID, &s.GenreID,
		&s.Duration, &s.BlobKey, &s.FilePath, &s.CoverImage, &s.CreatedAt)
	return s, err
}

func (r *mysqlSongRepository) querySongs(ctx context.Context, query string, args ...interface{}) ([]model.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []model.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

func (r *mysqlSongRepository) GetAll(ctx context.Context) ([]model.Song, error) {
	return r.querySongs(ctx, "SELECT "+songColumns+" FROM songs ORDER BY song_id")
}

func (r *mysqlSongRepository) GetByID(ctx context.Context, id int64) (*model.Song, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE song_id = ?", id)
	s, err := scanSong(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan song %d: %w", id, err)
	}
	return &s, nil
}

func (r *mysqlSongRepository) GetByArtist(ctx context.Context, artistID int64) ([]model.Song, error) {
	return r.querySongs(ctx, "SELECT "+songColumns+" FROM songs WHERE artist_id = ? ORDER BY song_id", artistID)
}

func (r *mysqlSongRepository) GetByAlbum(ctx context.Context, albumID int64) ([]model.Song, error) {
	return r.querySongs(ctx, "SELECT "+songColumns+" FROM songs WHERE album_id = ? ORDER BY song_id", albumID)
}

func (r *mysqlSongRepository) GetByGenre(ctx context.Context, genreID int64) ([]model.Song, error) {
	return r.querySongs(ctx, "SELECT "+songColumns+" FROM songs WHERE genre_id = ? ORDER BY song_id", genreID)
}

func (r *mysqlSongRepository) Create(ctx context.Context, song *model.Song) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO songs (title, artist_id, album_id, genre_id, duration, blob_key, file_path, cover_image)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		song.Title, song.ArtistID, song.AlbumID, song.GenreID,
		song.Duration, song.BlobKey, song.FilePath, song.CoverImage)
	if err != nil {
		return 0, fmt.Errorf("failed to create song: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for song: %w", err)
	}
	logger.Debug("Song created", logger.Int64("songId", id), logger.String("title", song.Title))
	return id, nil
}

func (r *mysqlSongRepository) Update(ctx context.Context, id int64, updates model.SongUpdate) error {
	var cols []string
	var vals []interface{}

	if updates.Title != nil {
		cols = append(cols, "title = ?")
		vals = append(vals, *updates.Title)
	}
	if updates.ArtistID != nil {
		cols = append(cols, "artist_id = ?")
		vals = append(vals, *updates.ArtistID)
	}
	if updates.AlbumID != nil {
		cols = append(cols, "album_id = ?")
		vals = append(vals, *updates.AlbumID)
	}
	if updates.GenreID != nil {
		cols = append(cols, "genre_id = ?")
		vals = append(vals, *updates.GenreID)
	}
	if updates.Duration != nil {
		cols = append(cols, "duration = ?")
		vals = append(vals, *updates.Duration)
	}
	if updates.BlobKey != nil {
		cols = append(cols, "blob_key = ?")
		vals = append(vals, *updates.BlobKey)
	}
	if updates.FilePath != nil {
		cols = append(cols, "file_path = ?")
		vals = append(vals, *updates.FilePath)
	}
	if updates.CoverImage != nil {
		cols = append(cols, "cover_image = ?")
		vals = append(vals, *updates.CoverImage)
	}
	if len(cols) == 0 {
		return nil
	}
	vals = append(vals, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE songs SET "+strings.Join(cols, ", ")+" WHERE song_id = ?", vals...)
	if err != nil {
		return fmt.Errorf("failed to update song %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for song update: %w", err)
	}
	if affected == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes the song's playlist memberships, then the song row, in one
// transaction. The song's artist and album are left in place even when this
// was their last song; sweeping those is an explicit caller decision.
func (r *mysqlSongRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin song delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE song_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist memberships for song %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM songs WHERE song_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for song delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit song delete: %w", err)
	}
	return nil
}

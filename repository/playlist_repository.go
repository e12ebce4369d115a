package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"melodex/model"
)

// PlaylistRepository defines the interface for playlist data operations,
// including the song-membership association.
type PlaylistRepository interface {
	GetAll(ctx context.Context) ([]model.Playlist, error)
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)
	Create(ctx context.Context, playlist *model.Playlist) (int64, error)
	Update(ctx context.Context, id int64, updates model.PlaylistUpdate) error
	Delete(ctx context.Context, id int64) error

	// Membership is set-like: adding an existing pair is a no-op, removing a
	// missing pair is a no-op.
	GetSongs(ctx context.Context, playlistID int64) ([]model.Song, error)
	AddSong(ctx context.Context, playlistID, songID int64) error
	RemoveSong(ctx context.Context, playlistID, songID int64) error
	SetSongs(ctx context.Context, playlistID int64, songIDs []int64) error
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

const playlistColumns = "playlist_id, title, cover_image, date_created, created_at"

func scanPlaylist(row interface{ Scan(...interface{}) error }) (model.Playlist, error) {
	var p model.Playlist
	err := row.Scan(&p.ID, &p.Title, &p.CoverImage, &p.DateCreated, &p.CreatedAt)
	return p, err
}

func (r *mysqlPlaylistRepository) GetAll(ctx context.Context) ([]model.Playlist, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+playlistColumns+" FROM playlists ORDER BY playlist_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []model.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func (r *mysqlPlaylistRepository) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+playlistColumns+" FROM playlists WHERE playlist_id = ?", id)
	p, err := scanPlaylist(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan playlist %d: %w", id, err)
	}
	return &p, nil
}

func (r *mysqlPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) (int64, error) {
	dateCreated := playlist.DateCreated
	if dateCreated == "" {
		dateCreated = time.Now().Format("2006-01-02")
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO playlists (title, cover_image, date_created) VALUES (?, ?, ?)",
		playlist.Title, playlist.CoverImage, dateCreated)
	if err != nil {
		return 0, fmt.Errorf("failed to create playlist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for playlist: %w", err)
	}
	return id, nil
}

func (r *mysqlPlaylistRepository) Update(ctx context.Context, id int64, updates model.PlaylistUpdate) error {
	var cols []string
	var vals []interface{}

	if updates.Title != nil {
		cols = append(cols, "title = ?")
		vals = append(vals, *updates.Title)
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
		"UPDATE playlists SET "+strings.Join(cols, ", ")+" WHERE playlist_id = ?", vals...)
	if err != nil {
		return fmt.Errorf("failed to update playlist %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for playlist update: %w", err)
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

// Delete removes the playlist's memberships, then the playlist row.
func (r *mysqlPlaylistRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin playlist delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete memberships for playlist %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE playlist_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for playlist delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// GetSongs returns the playlist's songs in membership order.
func (r *mysqlPlaylistRepository) GetSongs(ctx context.Context, playlistID int64) ([]model.Song, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.song_id, s.title, s.artist_id, s.album_id, s.genre_id, s.duration,
		        s.blob_key, s.file_path, s.cover_image, s.created_at
		 FROM songs s
		 JOIN playlist_songs ps ON ps.song_id = s.song_id
		 WHERE ps.playlist_id = ?
		 ORDER BY ps.position`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	var songs []model.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist song row: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// AddSong inserts the membership pair; a duplicate add is silently ignored.
func (r *mysqlPlaylistRepository) AddSong(ctx context.Context, playlistID, songID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO playlist_songs (playlist_id, song_id, position)
		 SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM playlist_songs WHERE playlist_id = ?`,
		playlistID, songID, playlistID)
	if err != nil {
		return fmt.Errorf("failed to add song %d to playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

// RemoveSong deletes by the composite key; removing an absent pair is a no-op.
func (r *mysqlPlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?", playlistID, songID)
	if err != nil {
		return fmt.Errorf("failed to remove song %d from playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

// SetSongs replaces the playlist's membership wholesale: all existing rows
// are deleted and the given ids inserted in order, inside one transaction.
func (r *mysqlPlaylistRepository) SetSongs(ctx context.Context, playlistID int64, songIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin set songs transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM playlist_songs WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to clear memberships for playlist %d: %w", playlistID, err)
	}

	for i, songID := range songIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO playlist_songs (playlist_id, song_id, position) VALUES (?, ?, ?)",
			playlistID, songID, i); err != nil {
			return fmt.Errorf("failed to insert song %d into playlist %d: %w", songID, playlistID, err)
		}
	}

	return tx.Commit()
}

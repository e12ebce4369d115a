package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"melodex/logger"
	"melodex/model"
)

// AlbumRepository defines the interface for album data operations.
type AlbumRepository interface {
	GetAll(ctx context.Context) ([]model.Album, error)
	GetByID(ctx context.Context, id int64) (*model.Album, error)
	GetByArtist(ctx context.Context, artistID int64) ([]model.Album, error)
	Create(ctx context.Context, album *model.Album) (int64, error)
	Update(ctx context.Context, id int64, updates model.AlbumUpdate) error
	Delete(ctx context.Context, id int64) error
}

// mysqlAlbumRepository implements AlbumRepository for MySQL.
type mysqlAlbumRepository struct {
	db *sql.DB
}

// NewMySQLAlbumRepository creates a new mysqlAlbumRepository.
func NewMySQLAlbumRepository(db *sql.DB) AlbumRepository {
	return &mysqlAlbumRepository{db: db}
}

const albumColumns = "album_id, title, release_date, cover_image, artist_id, created_at"

func scanAlbum(row interface{ Scan(...interface{}) error }) (model.Album, error) {
	var a model.Album
	err := row.Scan(&a.ID, &a.Title, &a.ReleaseDate, &a.CoverImage, &a.ArtistID, &a.CreatedAt)
	return a, err
}

func (r *mysqlAlbumRepository) GetAll(ctx context.Context) ([]model.Album, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+albumColumns+" FROM albums ORDER BY album_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []model.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album row: %w", err)
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

func (r *mysqlAlbumRepository) GetByID(ctx context.Context, id int64) (*model.Album, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+albumColumns+" FROM albums WHERE album_id = ?", id)
	a, err := scanAlbum(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan album %d: %w", id, err)
	}
	return &a, nil
}

func (r *mysqlAlbumRepository) GetByArtist(ctx context.Context, artistID int64) ([]model.Album, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+albumColumns+" FROM albums WHERE artist_id = ? ORDER BY album_id", artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums for artist %d: %w", artistID, err)
	}
	defer rows.Close()

	var albums []model.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album row: %w", err)
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

func (r *mysqlAlbumRepository) Create(ctx context.Context, album *model.Album) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO albums (title, release_date, cover_image, artist_id) VALUES (?, ?, ?, ?)",
		album.Title, album.ReleaseDate, album.CoverImage, album.ArtistID)
	if err != nil {
		return 0, fmt.Errorf("failed to create album: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for album: %w", err)
	}
	return id, nil
}

func (r *mysqlAlbumRepository) Update(ctx context.Context, id int64, updates model.AlbumUpdate) error {
	var cols []string
	var vals []interface{}

	if updates.Title != nil {
		cols = append(cols, "title = ?")
		vals = append(vals, *updates.Title)
	}
	if updates.ReleaseDate != nil {
		cols = append(cols, "release_date = ?")
		vals = append(vals, *updates.ReleaseDate)
	}
	if updates.CoverImage != nil {
		cols = append(cols, "cover_image = ?")
		vals = append(vals, *updates.CoverImage)
	}
	if updates.ArtistID != nil {
		cols = append(cols, "artist_id = ?")
		vals = append(vals, *updates.ArtistID)
	}
	if len(cols) == 0 {
		return nil
	}
	vals = append(vals, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE albums SET "+strings.Join(cols, ", ")+" WHERE album_id = ?", vals...)
	if err != nil {
		return fmt.Errorf("failed to update album %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for album update: %w", err)
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

// Delete clears the album reference on every song that points at the album,
// then removes the album row. Songs themselves are kept. Both steps run in
// one transaction.
func (r *mysqlAlbumRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin album delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE songs SET album_id = NULL WHERE album_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear album reference on songs for album %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM albums WHERE album_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete album %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for album delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit album delete: %w", err)
	}

	logger.Info("Album deleted, song references cleared", logger.Int64("albumId", id))
	return nil
}

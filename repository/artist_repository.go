package repository

import (
	"context"
	"database/sql"
	"fmt"

	"melodex/logger"
	"melodex/model"
)

// ArtistRepository defines the interface for artist data operations.
type ArtistRepository interface {
	GetAll(ctx context.Context) ([]model.Artist, error)
	GetByID(ctx context.Context, id int64) (*model.Artist, error)
	GetByName(ctx context.Context, name string) (*model.Artist, error)
	Create(ctx context.Context, artist *model.Artist) (int64, error)
	Update(ctx context.Context, id int64, updates model.ArtistUpdate) error
	Delete(ctx context.Context, id int64) error
}

// mysqlArtistRepository implements ArtistRepository for MySQL.
type mysqlArtistRepository struct {
	db *sql.DB
}

// NewMySQLArtistRepository creates a new mysqlArtistRepository.
func NewMySQLArtistRepository(db *sql.DB) ArtistRepository {
	return &mysqlArtistRepository{db: db}
}

func (r *mysqlArtistRepository) GetAll(ctx context.Context) ([]model.Artist, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT artist_id, name, created_at FROM artists ORDER BY artist_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []model.Artist
	for rows.Next() {
		var a model.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artist row: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

func (r *mysqlArtistRepository) GetByID(ctx context.Context, id int64) (*model.Artist, error) {
	row := r.db.QueryRowContext(ctx, "SELECT artist_id, name, created_at FROM artists WHERE artist_id = ?", id)
	var a model.Artist
	if err := row.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan artist %d: %w", id, err)
	}
	return &a, nil
}

func (r *mysqlArtistRepository) GetByName(ctx context.Context, name string) (*model.Artist, error) {
	row := r.db.QueryRowContext(ctx, "SELECT artist_id, name, created_at FROM artists WHERE name = ? LIMIT 1", name)
	var a model.Artist
	if err := row.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan artist %q: %w", name, err)
	}
	return &a, nil
}

func (r *mysqlArtistRepository) Create(ctx context.Context, artist *model.Artist) (int64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO artists (name) VALUES (?)", artist.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to create artist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for artist: %w", err)
	}
	return id, nil
}

func (r *mysqlArtistRepository) Update(ctx context.Context, id int64, updates model.ArtistUpdate) error {
	if updates.Name == nil {
		return nil
	}
	res, err := r.db.ExecContext(ctx, "UPDATE artists SET name = ? WHERE artist_id = ?", *updates.Name, id)
	if err != nil {
		return fmt.Errorf("failed to update artist %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for artist update: %w", err)
	}
	if affected == 0 {
		// RowsAffected is also 0 when the new name equals the old one, so
		// confirm absence before reporting not found.
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

// Delete removes the artist and cascades: every song owned by the artist is
// deleted through the song cascade (playlist memberships first), then the
// artist's albums, then the artist row. The whole cascade runs in one
// transaction so a mid-cascade failure leaves the catalog untouched.
func (r *mysqlArtistRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin artist delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE ps FROM playlist_songs ps JOIN songs s ON ps.song_id = s.song_id WHERE s.artist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist memberships for artist %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM songs WHERE artist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete songs for artist %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM albums WHERE artist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete albums for artist %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM artists WHERE artist_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete artist %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for artist delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit artist delete: %w", err)
	}

	logger.Info("Artist deleted with cascade", logger.Int64("artistId", id))
	return nil
}

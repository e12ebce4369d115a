package repository

import (
	"context"
	"database/sql"
	"fmt"

	"melodex/model"
)

// GenreRepository defines the interface for genre data operations.
type GenreRepository interface {
	GetAll(ctx context.Context) ([]model.Genre, error)
	GetByID(ctx context.Context, id int64) (*model.Genre, error)
	GetByName(ctx context.Context, name string) (*model.Genre, error)
	Create(ctx context.Context, genre *model.Genre) (int64, error)
	Update(ctx context.Context, id int64, updates model.GenreUpdate) error
	Delete(ctx context.Context, id int64) error
}

// mysqlGenreRepository implements GenreRepository for MySQL.
type mysqlGenreRepository struct {
	db *sql.DB
}

// NewMySQLGenreRepository creates a new mysqlGenreRepository.
func NewMySQLGenreRepository(db *sql.DB) GenreRepository {
	return &mysqlGenreRepository{db: db}
}

func (r *mysqlGenreRepository) GetAll(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT genre_id, name, created_at FROM genres ORDER BY genre_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	var genres []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan genre row: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *mysqlGenreRepository) GetByID(ctx context.Context, id int64) (*model.Genre, error) {
	row := r.db.QueryRowContext(ctx, "SELECT genre_id, name, created_at FROM genres WHERE genre_id = ?", id)
	var g model.Genre
	if err := row.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan genre %d: %w", id, err)
	}
	return &g, nil
}

func (r *mysqlGenreRepository) GetByName(ctx context.Context, name string) (*model.Genre, error) {
	row := r.db.QueryRowContext(ctx, "SELECT genre_id, name, created_at FROM genres WHERE name = ? LIMIT 1", name)
	var g model.Genre
	if err := row.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan genre %q: %w", name, err)
	}
	return &g, nil
}

func (r *mysqlGenreRepository) Create(ctx context.Context, genre *model.Genre) (int64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO genres (name) VALUES (?)", genre.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to create genre: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for genre: %w", err)
	}
	return id, nil
}

func (r *mysqlGenreRepository) Update(ctx context.Context, id int64, updates model.GenreUpdate) error {
	if updates.Name == nil {
		return nil
	}
	res, err := r.db.ExecContext(ctx, "UPDATE genres SET name = ? WHERE genre_id = ?", *updates.Name, id)
	if err != nil {
		return fmt.Errorf("failed to update genre %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for genre update: %w", err)
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

// Delete refuses to remove a genre that songs still reference.
func (r *mysqlGenreRepository) Delete(ctx context.Context, id int64) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM songs WHERE genre_id = ?", id).Scan(&count); err != nil {
		return fmt.Errorf("failed to count songs for genre %d: %w", id, err)
	}
	if count > 0 {
		return ErrGenreInUse
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM genres WHERE genre_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete genre %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for genre delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

package db

import (
	"database/sql"
	"fmt"

	"melodex/config"
	"melodex/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to the database.")
	return nil
}

// InitDB creates the catalog tables if they do not exist. The users table is
// managed separately through GORM auto-migration.
func InitDB() error {
	statements := []struct {
		name  string
		query string
	}{
		{"artists", `
		CREATE TABLE IF NOT EXISTS artists (
			artist_id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`},
		{"genres", `
		CREATE TABLE IF NOT EXISTS genres (
			genre_id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`},
		{"albums", `
		CREATE TABLE IF NOT EXISTS albums (
			album_id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			release_date VARCHAR(10),
			cover_image VARCHAR(767),
			artist_id INT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_albums_artist FOREIGN KEY (artist_id) REFERENCES artists(artist_id)
		);`},
		{"songs", `
		CREATE TABLE IF NOT EXISTS songs (
			song_id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			artist_id INT NOT NULL,
			album_id INT,
			genre_id INT NOT NULL,
			duration VARCHAR(16) NOT NULL DEFAULT '0:00:00',
			blob_key VARCHAR(767),
			file_path VARCHAR(767),
			cover_image VARCHAR(767),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_songs_artist FOREIGN KEY (artist_id) REFERENCES artists(artist_id),
			CONSTRAINT fk_songs_album FOREIGN KEY (album_id) REFERENCES albums(album_id),
			CONSTRAINT fk_songs_genre FOREIGN KEY (genre_id) REFERENCES genres(genre_id)
		);`},
		{"playlists", `
		CREATE TABLE IF NOT EXISTS playlists (
			playlist_id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			cover_image VARCHAR(767),
			date_created VARCHAR(10) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`},
		{"playlist_songs", `
		CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id INT NOT NULL,
			song_id INT NOT NULL,
			position INT NOT NULL DEFAULT 0,
			PRIMARY KEY (playlist_id, song_id),
			CONSTRAINT fk_ps_playlist FOREIGN KEY (playlist_id) REFERENCES playlists(playlist_id),
			CONSTRAINT fk_ps_song FOREIGN KEY (song_id) REFERENCES songs(song_id)
		);`},
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.name, err)
		}
	}

	logger.Info("Catalog schema initialized.")
	return nil
}

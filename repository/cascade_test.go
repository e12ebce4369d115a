package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"melodex/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestArtistDelete_CascadeOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLArtistRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE ps FROM playlist_songs ps JOIN songs s ON ps.song_id = s.song_id WHERE s.artist_id = ?")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM songs WHERE artist_id = ?")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM albums WHERE artist_id = ?")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM artists WHERE artist_id = ?")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestArtistDelete_NotFoundRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLArtistRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE ps FROM playlist_songs").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM songs WHERE artist_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM albums WHERE artist_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM artists WHERE artist_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAlbumDelete_ClearsSongReferences(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLAlbumRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE songs SET album_id = NULL WHERE album_id = ?")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM albums WHERE album_id = ?")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), 4); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGenreDelete_InUse(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLGenreRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM songs WHERE genre_id = ?")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	err := repo.Delete(context.Background(), 2)
	if !errors.Is(err, ErrGenreInUse) {
		t.Fatalf("Delete() error = %v, want ErrGenreInUse", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGenreDelete_Unreferenced(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLGenreRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM songs WHERE genre_id = ?")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM genres WHERE genre_id = ?")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSongDelete_RemovesMembershipsFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLSongRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_songs WHERE song_id = ?")).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM songs WHERE song_id = ?")).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), 11); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSongUpdate_PartialFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLSongRepository(db)

	title := "New Title"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE songs SET title = ? WHERE song_id = ?")).
		WithArgs(title, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), 3, model.SongUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSongUpdate_NoFieldsIsNoop(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLSongRepository(db)

	// No expectations: an empty partial must not touch the database.
	if err := repo.Update(context.Background(), 3, model.SongUpdate{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSongGetByID_Absent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLSongRepository(db)

	mock.ExpectQuery("SELECT .* FROM songs WHERE song_id = ?").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	song, err := repo.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if song != nil {
		t.Errorf("GetByID() = %+v, want nil for absent row", song)
	}
}

func TestSongGetAll(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLSongRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"song_id", "title", "artist_id", "album_id", "genre_id",
		"duration", "blob_key", "file_path", "cover_image", "created_at",
	}).
		AddRow(1, "Track 1", 1, nil, 1, "0:03:30", "audio/1.mp3", nil, nil, now).
		AddRow(2, "Track 2", 1, 5, 1, "0:04:00", nil, "/music/t2.mp3", nil, now)

	mock.ExpectQuery("SELECT .* FROM songs ORDER BY song_id").WillReturnRows(rows)

	songs, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("GetAll() returned %d songs, want 2", len(songs))
	}
	if !songs[0].BlobKey.Valid || songs[0].BlobKey.String != "audio/1.mp3" {
		t.Errorf("song 1 blob key = %+v, want audio/1.mp3", songs[0].BlobKey)
	}
	if songs[0].AlbumID.Valid {
		t.Errorf("song 1 album id should be null")
	}
	if !songs[1].AlbumID.Valid || songs[1].AlbumID.Int64 != 5 {
		t.Errorf("song 2 album id = %+v, want 5", songs[1].AlbumID)
	}
}

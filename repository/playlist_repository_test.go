package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPlaylistAddSong_AppendsAtEnd(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLPlaylistRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT IGNORE INTO playlist_songs (playlist_id, song_id, position) " +
			"SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM playlist_songs WHERE playlist_id = ?")).
		WithArgs(int64(1), int64(9), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.AddSong(context.Background(), 1, 9); err != nil {
		t.Fatalf("AddSong() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPlaylistAddSong_DuplicateIsNoop(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLPlaylistRepository(db)

	// INSERT IGNORE reports zero affected rows when the pair already exists.
	mock.ExpectExec("INSERT IGNORE INTO playlist_songs").
		WithArgs(int64(1), int64(9), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.AddSong(context.Background(), 1, 9); err != nil {
		t.Fatalf("AddSong() on existing membership error = %v", err)
	}
}

func TestPlaylistRemoveSong_AbsentIsNoop(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLPlaylistRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?")).
		WithArgs(int64(1), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.RemoveSong(context.Background(), 1, 9); err != nil {
		t.Fatalf("RemoveSong() on absent membership error = %v", err)
	}
}

func TestPlaylistSetSongs_ReplacesInOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLPlaylistRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_songs WHERE playlist_id = ?")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	insert := regexp.QuoteMeta("INSERT IGNORE INTO playlist_songs (playlist_id, song_id, position) VALUES (?, ?, ?)")
	mock.ExpectExec(insert).WithArgs(int64(2), int64(5), 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WithArgs(int64(2), int64(3), 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WithArgs(int64(2), int64(8), 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SetSongs(context.Background(), 2, []int64{5, 3, 8}); err != nil {
		t.Fatalf("SetSongs() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPlaylistGetSongs_OrderedByPosition(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLPlaylistRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"song_id", "title", "artist_id", "album_id", "genre_id",
		"duration", "blob_key", "file_path", "cover_image", "created_at",
	}).
		AddRow(5, "Five", 1, nil, 1, "0:03:00", "audio/5.mp3", nil, nil, now).
		AddRow(3, "Three", 1, nil, 1, "0:02:00", "audio/3.mp3", nil, nil, now).
		AddRow(8, "Eight", 2, nil, 1, "0:04:00", "audio/8.mp3", nil, nil, now)

	mock.ExpectQuery("FROM songs s JOIN playlist_songs ps ON ps.song_id = s.song_id WHERE ps.playlist_id = \\? ORDER BY ps.position").
		WithArgs(int64(2)).
		WillReturnRows(rows)

	songs, err := repo.GetSongs(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetSongs() error = %v", err)
	}
	want := []int64{5, 3, 8}
	if len(songs) != len(want) {
		t.Fatalf("GetSongs() returned %d songs, want %d", len(songs), len(want))
	}
	for i, id := range want {
		if songs[i].ID != id {
			t.Errorf("GetSongs()[%d].ID = %d, want %d", i, songs[i].ID, id)
		}
	}
}

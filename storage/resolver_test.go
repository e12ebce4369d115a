package storage

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"melodex/model"
)

func blobSong(id int64, key string) *model.Song {
	return &model.Song{ID: id, BlobKey: sql.NullString{String: key, Valid: true}}
}

func fileSong(id int64, path string) *model.Song {
	return &model.Song{ID: id, FilePath: sql.NullString{String: path, Valid: true}}
}

func TestURLFor_BlobWinsOverFile(t *testing.T) {
	r := NewResolver("/media", time.Minute)

	song := blobSong(1, "audio/1.mp3")
	song.FilePath = sql.NullString{String: "/music/1.mp3", Valid: true}

	url, err := r.URLFor(song)
	if err != nil {
		t.Fatalf("URLFor() error = %v", err)
	}
	if !strings.HasPrefix(url, "/media/") {
		t.Errorf("url = %q, want /media/ prefix", url)
	}

	p, ok := r.Lookup(strings.TrimPrefix(url, "/media/"))
	if !ok {
		t.Fatal("Lookup() failed for a fresh grant")
	}
	if p.Kind != PayloadBlob || p.Ref != "audio/1.mp3" {
		t.Errorf("payload = %+v, want blob audio/1.mp3", p)
	}
	if p.SongID != 1 {
		t.Errorf("payload song id = %d, want 1", p.SongID)
	}
}

func TestURLFor_FileFallback(t *testing.T) {
	r := NewResolver("/media", time.Minute)

	url, err := r.URLFor(fileSong(2, "/music/2.flac"))
	if err != nil {
		t.Fatalf("URLFor() error = %v", err)
	}
	p, ok := r.Lookup(strings.TrimPrefix(url, "/media/"))
	if !ok {
		t.Fatal("Lookup() failed for a fresh grant")
	}
	if p.Kind != PayloadFile || p.Ref != "/music/2.flac" {
		t.Errorf("payload = %+v, want file /music/2.flac", p)
	}
}

func TestURLFor_NoPayload(t *testing.T) {
	r := NewResolver("/media", time.Minute)

	_, err := r.URLFor(&model.Song{ID: 3})
	if !errors.Is(err, ErrNoFileData) {
		t.Fatalf("URLFor() error = %v, want ErrNoFileData", err)
	}
}

func TestRevoke(t *testing.T) {
	r := NewResolver("/media", time.Minute)

	url, err := r.URLFor(blobSong(1, "audio/1.mp3"))
	if err != nil {
		t.Fatalf("URLFor() error = %v", err)
	}

	r.Revoke(url)
	if _, ok := r.Lookup(strings.TrimPrefix(url, "/media/")); ok {
		t.Error("Lookup() succeeded after Revoke()")
	}

	// Revoking again, or revoking an unknown URL, is a no-op.
	r.Revoke(url)
	r.Revoke("/media/never-issued")
}

func TestLookup_Expired(t *testing.T) {
	r := NewResolver("/media", -time.Second)

	url, err := r.URLFor(blobSong(1, "audio/1.mp3"))
	if err != nil {
		t.Fatalf("URLFor() error = %v", err)
	}
	if _, ok := r.Lookup(strings.TrimPrefix(url, "/media/")); ok {
		t.Error("Lookup() succeeded on an expired grant")
	}
	if r.Live() != 0 {
		t.Errorf("Live() = %d, expired grant should be dropped on lookup", r.Live())
	}
}

func TestSweep(t *testing.T) {
	r := NewResolver("/media", -time.Second)
	for i := int64(1); i <= 3; i++ {
		if _, err := r.URLFor(blobSong(i, "audio/x.mp3")); err != nil {
			t.Fatalf("URLFor() error = %v", err)
		}
	}

	if removed := r.Sweep(); removed != 3 {
		t.Errorf("Sweep() = %d, want 3", removed)
	}
	if r.Live() != 0 {
		t.Errorf("Live() = %d after sweep, want 0", r.Live())
	}
}

func TestURLSet_LazyAndStable(t *testing.T) {
	r := NewResolver("/media", time.Minute)
	set := NewURLSet(r)

	song := blobSong(1, "audio/1.mp3")
	first, err := set.Get(song)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := set.Get(song)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first != second {
		t.Errorf("Get() re-granted a URL for a song that already has one: %q vs %q", first, second)
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", set.Len())
	}
}

func TestURLSet_ReleaseAllRevokesLiveMap(t *testing.T) {
	r := NewResolver("/media", time.Minute)
	set := NewURLSet(r)

	// URLs added after the set was created must still be released: the
	// release pass walks the live map, not a snapshot.
	var urls []string
	for i := int64(1); i <= 3; i++ {
		url, err := set.Get(blobSong(i, "audio/x.mp3"))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		urls = append(urls, url)
	}

	set.ReleaseAll()

	if set.Len() != 0 {
		t.Errorf("Len() = %d after ReleaseAll, want 0", set.Len())
	}
	for _, url := range urls {
		if _, ok := r.Lookup(strings.TrimPrefix(url, "/media/")); ok {
			t.Errorf("grant for %q still live after ReleaseAll", url)
		}
	}
}

func TestURLSet_ReleaseOne(t *testing.T) {
	r := NewResolver("/media", time.Minute)
	set := NewURLSet(r)

	url, err := set.Get(blobSong(1, "audio/1.mp3"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	set.Release(1)

	if _, ok := r.Lookup(strings.TrimPrefix(url, "/media/")); ok {
		t.Error("grant still live after Release")
	}

	// A fresh Get grants a new URL.
	again, err := set.Get(blobSong(1, "audio/1.mp3"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again == url {
		t.Error("released URL was handed out again")
	}
}

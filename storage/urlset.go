package storage

import (
	"sync"

	"melodex/model"
)

// URLSet tracks the live media URL per song for one view of the catalog:
// URLs are created lazily on first need and every one still live is revoked
// together at teardown. ReleaseAll iterates the map as it is at release
// time, not a snapshot taken when the set was created.
type URLSet struct {
	mu       sync.Mutex
	resolver *Resolver
	bySong   map[int64]string
}

// NewURLSet creates an empty set backed by the resolver.
func NewURLSet(resolver *Resolver) *URLSet {
	return &URLSet{
		resolver: resolver,
		bySong:   make(map[int64]string),
	}
}

// Get returns the song's live URL, granting one on first request.
func (u *URLSet) Get(song *model.Song) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if url, ok := u.bySong[song.ID]; ok {
		return url, nil
	}
	url, err := u.resolver.URLFor(song)
	if err != nil {
		return "", err
	}
	u.bySong[song.ID] = url
	return url, nil
}

// Release revokes and forgets one song's URL, if it has one.
func (u *URLSet) Release(songID int64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if url, ok := u.bySong[songID]; ok {
		u.resolver.Revoke(url)
		delete(u.bySong, songID)
	}
}

// ReleaseAll revokes every URL currently in the set and empties it.
func (u *URLSet) ReleaseAll() {
	u.mu.Lock()
	defer u.mu.Unlock()

	for id, url := range u.bySong {
		u.resolver.Revoke(url)
		delete(u.bySong, id)
	}
}

// Len reports how many songs currently hold a live URL.
func (u *URLSet) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.bySong)
}

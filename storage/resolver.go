package storage

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"melodex/model"
)

// ErrNoFileData is returned when a song carries neither a blob key nor a
// file-system handle.
var ErrNoFileData = errors.New("song has no file data")

// PayloadKind tells the media handler which backend to read from.
type PayloadKind int

const (
	// PayloadBlob is an object-store key.
	PayloadBlob PayloadKind = iota
	// PayloadFile is a local filesystem path.
	PayloadFile
)

// Payload describes where a granted media URL's bytes live.
type Payload struct {
	SongID int64
	Kind   PayloadKind
	Ref    string // object key or file path
}

type grant struct {
	payload   Payload
	expiresAt time.Time
}

// Resolver turns song payloads into transient, revocable media URLs. Each
// grant is an opaque token with a TTL; the media handler exchanges the token
// for the payload location, and revoked or expired tokens resolve to nothing.
type Resolver struct {
	mu       sync.Mutex
	basePath string
	ttl      time.Duration
	byToken  map[string]grant
}

// NewResolver creates a resolver issuing URLs under basePath, e.g. "/media".
func NewResolver(basePath string, ttl time.Duration) *Resolver {
	return &Resolver{
		basePath: strings.TrimSuffix(basePath, "/"),
		ttl:      ttl,
		byToken:  make(map[string]grant),
	}
}

// URLFor grants a transient URL for the song's audio payload. When both a
// blob and a file handle are present the blob wins. Songs with no payload
// at all fail with ErrNoFileData.
func (r *Resolver) URLFor(song *model.Song) (string, error) {
	p := Payload{SongID: song.ID}
	switch {
	case song.BlobKey.Valid && song.BlobKey.String != "":
		p.Kind = PayloadBlob
		p.Ref = song.BlobKey.String
	case song.FilePath.Valid && song.FilePath.String != "":
		p.Kind = PayloadFile
		p.Ref = song.FilePath.String
	default:
		return "", ErrNoFileData
	}

	token := uuid.NewString()
	r.mu.Lock()
	r.byToken[token] = grant{payload: p, expiresAt: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	return r.basePath + "/" + token, nil
}

// Lookup exchanges a token for its payload. Expired grants are dropped on
// the spot and report as absent.
func (r *Resolver) Lookup(token string) (Payload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byToken[token]
	if !ok {
		return Payload{}, false
	}
	if time.Now().After(g.expiresAt) {
		delete(r.byToken, token)
		return Payload{}, false
	}
	return g.payload, true
}

// Revoke releases the grant behind a URL. The URL must not be used after.
// Revoking an unknown or already-revoked URL is a no-op.
func (r *Resolver) Revoke(url string) {
	token := url
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		token = url[i+1:]
	}
	r.mu.Lock()
	delete(r.byToken, token)
	r.mu.Unlock()
}

// Sweep drops every expired grant and returns how many were removed.
func (r *Resolver) Sweep() int {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, g := range r.byToken {
		if now.After(g.expiresAt) {
			delete(r.byToken, token)
			removed++
		}
	}
	return removed
}

// Live reports how many grants are currently outstanding.
func (r *Resolver) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}

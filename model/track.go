package model

// Track is the ephemeral, playback-ready view of a song: a resolved media
// URL plus display metadata. Tracks are built on demand and never persisted.
// SongID is carried through so the playback engine can match tracks by a
// stable identifier instead of display strings or transient URLs.
type Track struct {
	SongID int64  `json:"songId"`
	URL    string `json:"url"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	Cover  string `json:"cover,omitempty"`
}

// Same reports whether two tracks refer to the same song. Identity is the
// song id when both sides carry one; the URL when stable; title+artist as a
// last resort for tracks built before their song ids were known.
func (t Track) Same(other Track) bool {
	if t.SongID > 0 && other.SongID > 0 {
		return t.SongID == other.SongID
	}
	if t.URL != "" && t.URL == other.URL {
		return true
	}
	return t.Title != "" && t.Title == other.Title && t.Artist == other.Artist
}

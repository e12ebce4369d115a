package player

import (
	"melodex/model"
)

// queue is the ordered track list plus a cursor into it. A cursor of -1
// means "not positioned anywhere". The queue is not goroutine-safe; the
// engine serializes access under its own lock.
type queue struct {
	tracks []model.Track
	cursor int
}

func newQueue() *queue {
	return &queue{cursor: -1}
}

// add appends a track without touching the cursor.
func (q *queue) add(t model.Track) {
	q.tracks = append(q.tracks, t)
}

// replace swaps in a new track list wholesale. The cursor is deliberately
// left alone: callers re-align it through playTrack, and every accessor is
// bounds-checked so a stale cursor is harmless.
func (q *queue) replace(tracks []model.Track) {
	q.tracks = make([]model.Track, len(tracks))
	copy(q.tracks, tracks)
}

// at returns the track at index i, or false if i is out of range.
func (q *queue) at(i int) (model.Track, bool) {
	if i < 0 || i >= len(q.tracks) {
		return model.Track{}, false
	}
	return q.tracks[i], true
}

// indexOf finds the first track matching t by song identity, or -1.
func (q *queue) indexOf(t model.Track) int {
	for i, qt := range q.tracks {
		if qt.Same(t) {
			return i
		}
	}
	return -1
}

// hasNext reports whether the cursor can advance. An unpositioned cursor
// (-1) advances onto the first track of a non-empty queue.
func (q *queue) hasNext() bool {
	return q.cursor < len(q.tracks)-1
}

// hasPrevious reports whether the cursor can retreat.
func (q *queue) hasPrevious() bool {
	return q.cursor > 0 && q.cursor <= len(q.tracks)
}

// snapshot copies the track list for callers outside the engine's lock.
func (q *queue) snapshot() []model.Track {
	out := make([]model.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// clear empties the queue and resets the cursor.
func (q *queue) clear() {
	q.tracks = nil
	q.cursor = -1
}

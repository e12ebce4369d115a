package server

import (
	"fmt"
	"testing"

	"melodex/model"
)

func buildFailing(failIDs ...int64) func(int64) (model.Track, error) {
	failing := make(map[int64]bool, len(failIDs))
	for _, id := range failIDs {
		failing[id] = true
	}
	return func(id int64) (model.Track, error) {
		if failing[id] {
			return model.Track{}, fmt.Errorf("song %d has no file data", id)
		}
		return model.Track{SongID: id, URL: fmt.Sprintf("http://localhost/media/%d", id)}, nil
	}
}

func TestRebuildQueue_RemapsCursorPastSkips(t *testing.T) {
	// Song 2 is unplayable; the cursor points at song 3, which lands at
	// position 1 of the rebuilt queue.
	tracks, cursor := rebuildQueue([]int64{1, 2, 3}, 2, buildFailing(2))

	if len(tracks) != 2 {
		t.Fatalf("rebuilt queue has %d tracks, want 2", len(tracks))
	}
	if tracks[0].SongID != 1 || tracks[1].SongID != 3 {
		t.Errorf("rebuilt queue = [%d, %d], want [1, 3]", tracks[0].SongID, tracks[1].SongID)
	}
	if cursor != 1 {
		t.Errorf("cursor = %d, want 1", cursor)
	}
}

func TestRebuildQueue_CursorSongDropped(t *testing.T) {
	tracks, cursor := rebuildQueue([]int64{1, 2, 3}, 1, buildFailing(2))

	if len(tracks) != 2 {
		t.Fatalf("rebuilt queue has %d tracks, want 2", len(tracks))
	}
	if cursor != -1 {
		t.Errorf("cursor = %d, want -1 when its song is dropped", cursor)
	}
}

func TestRebuildQueue_NoSkips(t *testing.T) {
	tracks, cursor := rebuildQueue([]int64{5, 6, 7}, 0, buildFailing())

	if len(tracks) != 3 {
		t.Fatalf("rebuilt queue has %d tracks, want 3", len(tracks))
	}
	if cursor != 0 {
		t.Errorf("cursor = %d, want 0", cursor)
	}
}

func TestRebuildQueue_UnpositionedCursor(t *testing.T) {
	_, cursor := rebuildQueue([]int64{1, 2}, -1, buildFailing())
	if cursor != -1 {
		t.Errorf("cursor = %d, want -1", cursor)
	}
}

package player

import (
	"sync"
	"testing"
	"time"

	"melodex/model"
)

// fakeTransport records the commands the engine issues and lets tests feed
// events back in.
type fakeTransport struct {
	mu       sync.Mutex
	source   string
	playing  bool
	position float64
	volume   float64
	events   chan Event
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{volume: 1.0, events: make(chan Event, 8)}
}

func (f *fakeTransport) SetSource(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.source = url
	f.position = 0
	return nil
}

func (f *fakeTransport) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
	return nil
}

func (f *fakeTransport) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	return nil
}

func (f *fakeTransport) SetPosition(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = seconds
	return nil
}

func (f *fakeTransport) SetVolume(level float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = level
	return nil
}

func (f *fakeTransport) Events() <-chan Event { return f.events }

func (f *fakeTransport) Close() error {
	close(f.events)
	return nil
}

func (f *fakeTransport) currentSource() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

func testTrack(id int64, title string) model.Track {
	return model.Track{SongID: id, URL: "http://localhost/media/" + title, Title: title, Artist: "Test Artist"}
}

func newTestEngine(t *testing.T) (*Engine, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	e := NewEngine(ft)
	t.Cleanup(func() { e.Close() })
	return e, ft
}

func TestPlayTrack_SetsPlayingAndCurrent(t *testing.T) {
	e, ft := newTestEngine(t)
	track := testTrack(1, "Track 1")

	if err := e.PlayTrack(track); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	state := e.State()
	if !state.Playing {
		t.Error("playing flag should be true after PlayTrack")
	}
	if state.Current == nil || state.Current.Title != "Track 1" {
		t.Errorf("current track = %+v, want Track 1", state.Current)
	}
	if ft.currentSource() != track.URL {
		t.Errorf("transport source = %q, want %q", ft.currentSource(), track.URL)
	}
}

func TestPlayTrack_AlignsCursorWithQueue(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")
	e.SetQueue([]model.Track{a, b})

	if err := e.PlayTrack(b); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}
	if got := e.State().Cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
}

func TestAddToQueue_OrderPreserving(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")

	e.AddToQueue(a)
	e.AddToQueue(b)

	q := e.State().Queue
	if len(q) != 2 {
		t.Fatalf("queue length = %d, want 2", len(q))
	}
	if q[0].SongID != 1 || q[1].SongID != 2 {
		t.Errorf("queue order = [%d %d], want [1 2]", q[0].SongID, q[1].SongID)
	}
	if e.State().Cursor != -1 {
		t.Errorf("cursor = %d, AddToQueue must not move it", e.State().Cursor)
	}
}

func TestPlayNext_AdvancesCursor(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")
	e.SetQueue([]model.Track{a, b})

	if err := e.PlayTrack(a); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}
	if err := e.PlayNext(); err != nil {
		t.Fatalf("PlayNext() error = %v", err)
	}

	state := e.State()
	if state.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", state.Cursor)
	}
	if state.Current == nil || state.Current.SongID != 2 {
		t.Errorf("current = %+v, want song 2", state.Current)
	}
	if !state.Playing {
		t.Error("playing flag should stay true across PlayNext")
	}
}

func TestPlayNext_NoopAtEnd(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")
	e.SetQueue([]model.Track{a, b})
	if err := e.PlayTrack(b); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	before := e.State()
	if err := e.PlayNext(); err != nil {
		t.Fatalf("PlayNext() error = %v", err)
	}
	after := e.State()

	if after.Cursor != before.Cursor {
		t.Errorf("cursor moved from %d to %d at end of queue", before.Cursor, after.Cursor)
	}
	if after.Current.SongID != before.Current.SongID {
		t.Errorf("current track changed at end of queue")
	}
	if after.Playing != before.Playing {
		t.Errorf("playing flag changed at end of queue")
	}
}

func TestPlayPrevious_NoopAtStart(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")
	e.SetQueue([]model.Track{a, b})
	if err := e.PlayTrack(a); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	if err := e.PlayPrevious(); err != nil {
		t.Fatalf("PlayPrevious() error = %v", err)
	}
	if got := e.State().Cursor; got != 0 {
		t.Errorf("cursor = %d, want 0 (no-op at start)", got)
	}
}

func TestSetVolume_RoundTripAndClamping(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, v := range []float64{0, 0.5, 1} {
		if err := e.SetVolume(v); err != nil {
			t.Fatalf("SetVolume(%v) error = %v", v, err)
		}
		if got := e.State().Volume; got != v {
			t.Errorf("volume = %v, want %v", got, v)
		}
	}

	if err := e.SetVolume(1.7); err != nil {
		t.Fatalf("SetVolume(1.7) error = %v", err)
	}
	if got := e.State().Volume; got != 1 {
		t.Errorf("volume = %v, want clamp to 1", got)
	}
	if err := e.SetVolume(-0.3); err != nil {
		t.Fatalf("SetVolume(-0.3) error = %v", err)
	}
	if got := e.State().Volume; got != 0 {
		t.Errorf("volume = %v, want clamp to 0", got)
	}
}

func TestTogglePlayPause(t *testing.T) {
	e, ft := newTestEngine(t)
	if err := e.PlayTrack(testTrack(1, "A")); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	if err := e.TogglePlayPause(); err != nil {
		t.Fatalf("TogglePlayPause() error = %v", err)
	}
	if e.State().Playing {
		t.Error("playing flag should be false after pause")
	}
	ft.mu.Lock()
	paused := !ft.playing
	ft.mu.Unlock()
	if !paused {
		t.Error("transport should have received a pause command")
	}

	if err := e.TogglePlayPause(); err != nil {
		t.Fatalf("TogglePlayPause() error = %v", err)
	}
	if !e.State().Playing {
		t.Error("playing flag should be true after resume")
	}
}

func TestTogglePlayPause_NoTrack(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.TogglePlayPause(); err != nil {
		t.Fatalf("TogglePlayPause() with no track error = %v", err)
	}
	if e.State().Playing {
		t.Error("playing flag should stay false with no track")
	}
}

func TestSeek_UpdatesPositionOnly(t *testing.T) {
	e, ft := newTestEngine(t)
	if err := e.PlayTrack(testTrack(1, "A")); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	if err := e.Seek(42.5); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	state := e.State()
	if state.Position != 42.5 {
		t.Errorf("position = %v, want 42.5", state.Position)
	}
	if !state.Playing {
		t.Error("seek must not change the playing flag")
	}
	ft.mu.Lock()
	pos := ft.position
	ft.mu.Unlock()
	if pos != 42.5 {
		t.Errorf("transport position = %v, want 42.5", pos)
	}
}

func TestEndedEvent_AdvancesQueue(t *testing.T) {
	e, ft := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")
	e.SetQueue([]model.Track{a, b})
	if err := e.PlayTrack(a); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	ft.events <- Event{Type: EventEnded}

	deadline := time.After(2 * time.Second)
	for {
		state := e.State()
		if state.Cursor == 1 && state.Current != nil && state.Current.SongID == 2 {
			if !state.Playing {
				t.Error("playing flag should be true on the advanced track")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("engine did not advance after ended event; state = %+v", state)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestEndedEvent_AtEndStopsPlayback(t *testing.T) {
	e, ft := newTestEngine(t)
	a := testTrack(1, "A")
	e.SetQueue([]model.Track{a})
	if err := e.PlayTrack(a); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	ft.events <- Event{Type: EventEnded}

	deadline := time.After(2 * time.Second)
	for {
		state := e.State()
		if !state.Playing {
			if state.Cursor != 0 {
				t.Errorf("cursor = %d, want 0", state.Cursor)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("playing flag never cleared after final track ended")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDurationEvent(t *testing.T) {
	e, ft := newTestEngine(t)
	if err := e.PlayTrack(testTrack(1, "A")); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	ft.events <- Event{Type: EventDuration, Seconds: 330}

	deadline := time.After(2 * time.Second)
	for {
		if e.State().Duration == 330 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("duration never reached engine state")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestReset_TearsDownSession(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")
	e.SetQueue([]model.Track{a, b})
	if err := e.PlayTrack(a); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}
	if err := e.Seek(10); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	if err := e.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	state := e.State()
	if state.Current != nil {
		t.Errorf("current = %+v, want nil after reset", state.Current)
	}
	if state.Playing {
		t.Error("playing flag should be false after reset")
	}
	if state.Position != 0 || state.Duration != 0 {
		t.Errorf("position/duration = %v/%v, want 0/0", state.Position, state.Duration)
	}
	if len(state.Queue) != 0 || state.Cursor != -1 {
		t.Errorf("queue/cursor = %d/%d, want empty/-1", len(state.Queue), state.Cursor)
	}
}

func TestPlayNext_UnpositionedCursorStartsFirstTrack(t *testing.T) {
	e, ft := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")
	e.SetQueue([]model.Track{a, b})

	// SetQueue leaves the cursor at -1; advancing from there starts the
	// first queued track.
	if err := e.PlayNext(); err != nil {
		t.Fatalf("PlayNext() error = %v", err)
	}

	state := e.State()
	if state.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", state.Cursor)
	}
	if state.Current == nil || state.Current.SongID != 1 {
		t.Errorf("current = %+v, want track A", state.Current)
	}
	if !state.Playing {
		t.Error("playing flag should be true")
	}
	if got := ft.currentSource(); got != a.URL {
		t.Errorf("source = %q, want %q", got, a.URL)
	}
}

func TestClose_WhileListenersNotified(t *testing.T) {
	ft := newFakeTransport()
	e := NewEngine(ft)

	states := e.Subscribe()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range states {
		}
	}()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(0); ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			e.AddToQueue(testTrack(i, "X"))
		}
	}()

	time.Sleep(10 * time.Millisecond)
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	close(stop)
	wg.Wait()

	// The subscription channel must be closed so the drain loop ends.
	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription channel was not closed")
	}
}

func TestSetQueue_LeavesCursorAlone(t *testing.T) {
	e, _ := newTestEngine(t)
	a, b := testTrack(1, "A"), testTrack(2, "B")
	e.SetQueue([]model.Track{a, b})
	if err := e.PlayTrack(b); err != nil {
		t.Fatalf("PlayTrack() error = %v", err)
	}

	e.SetQueue([]model.Track{testTrack(3, "C")})
	// Cursor 1 is now past the end; accessors treat it as "nothing next".
	if err := e.PlayNext(); err != nil {
		t.Fatalf("PlayNext() error = %v", err)
	}
	if got := e.State().Cursor; got != 1 {
		t.Errorf("cursor = %d, want unchanged 1", got)
	}
}

package player

import (
	"sync"

	"melodex/logger"
	"melodex/model"
)

// State is a point-in-time snapshot of the playback session.
type State struct {
	Current  *model.Track  `json:"current"`
	Playing  bool          `json:"playing"`
	Position float64       `json:"position"`
	Duration float64       `json:"duration"`
	Volume   float64       `json:"volume"`
	Queue    []model.Track `json:"queue"`
	Cursor   int           `json:"cursor"`
}

// Engine is the single source of truth for what is playing, from where, at
// what position, and what plays next. It owns one Transport and one queue;
// construct it once at startup and share it by reference.
type Engine struct {
	mu        sync.RWMutex
	transport Transport
	queue     *queue

	current  *model.Track
	playing  bool
	position float64
	duration float64
	volume   float64

	listeners []chan State
	done      chan struct{}
}

// NewEngine wires the engine to its transport and starts consuming transport
// events. Volume starts at full.
func NewEngine(t Transport) *Engine {
	e := &Engine{
		transport: t,
		queue:     newQueue(),
		volume:    1.0,
		done:      make(chan struct{}),
	}
	go e.consumeEvents()
	return e
}

// consumeEvents applies transport notifications to engine state. A finished
// track flips the playing flag off and then tries to advance the queue.
func (e *Engine) consumeEvents() {
	for ev := range e.transport.Events() {
		e.mu.Lock()
		switch ev.Type {
		case EventPosition:
			e.position = ev.Seconds
		case EventDuration:
			e.duration = ev.Seconds
		case EventEnded:
			e.playing = false
			if err := e.playNextLocked(); err != nil {
				logger.Warn("failed to advance queue after track end",
					logger.ErrorField(err))
			}
		}
		e.mu.Unlock()
		e.notify()
	}
}

// PlayTrack makes the given track current and starts it. If the track is
// found in the queue the cursor is re-aligned to its position; a track that
// is not queued still plays, with the cursor untouched.
func (e *Engine) PlayTrack(track model.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playTrackLocked(track)
}

func (e *Engine) playTrackLocked(track model.Track) error {
	if e.current == nil || !e.current.Same(track) {
		if err := e.transport.SetSource(track.URL); err != nil {
			return err
		}
		e.position = 0
		e.duration = 0
		if idx := e.queue.indexOf(track); idx >= 0 {
			e.queue.cursor = idx
		}
	}

	if err := e.transport.Play(); err != nil {
		return err
	}
	t := track
	e.current = &t
	// Optimistic: the flag goes up before the transport confirms audio
	// is actually flowing.
	e.playing = true
	defer e.notifyAsync()
	return nil
}

// TogglePlayPause pauses when playing and resumes when paused. With no
// current track it does nothing.
func (e *Engine) TogglePlayPause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil
	}

	if e.playing {
		if err := e.transport.Pause(); err != nil {
			return err
		}
		e.playing = false
	} else {
		if err := e.transport.Play(); err != nil {
			return err
		}
		e.playing = true
	}
	defer e.notifyAsync()
	return nil
}

// Seek moves playback to an absolute offset without changing the playing
// flag. Negative offsets snap to zero.
func (e *Engine) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	if err := e.transport.SetPosition(seconds); err != nil {
		return err
	}
	e.position = seconds
	defer e.notifyAsync()
	return nil
}

// SetVolume applies the level to the transport and to tracked state. Values
// outside [0, 1] are clamped.
func (e *Engine) SetVolume(level float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}
	if err := e.transport.SetVolume(level); err != nil {
		return err
	}
	e.volume = level
	defer e.notifyAsync()
	return nil
}

// PlayNext advances the cursor and starts the next queued track. At the end
// of the queue it is a no-op: playback simply stops where it is.
func (e *Engine) PlayNext() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playNextLocked()
}

func (e *Engine) playNextLocked() error {
	if !e.queue.hasNext() {
		return nil
	}
	next, ok := e.queue.at(e.queue.cursor + 1)
	if !ok {
		return nil
	}
	e.queue.cursor++
	return e.startTrackLocked(next)
}

// PlayPrevious retreats the cursor and starts the previous queued track.
// No-op at the start of the queue.
func (e *Engine) PlayPrevious() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.queue.hasPrevious() {
		return nil
	}
	prev, ok := e.queue.at(e.queue.cursor - 1)
	if !ok {
		return nil
	}
	e.queue.cursor--
	return e.startTrackLocked(prev)
}

// startTrackLocked loads and plays a track the cursor already points at.
func (e *Engine) startTrackLocked(track model.Track) error {
	if err := e.transport.SetSource(track.URL); err != nil {
		return err
	}
	e.position = 0
	e.duration = 0
	if err := e.transport.Play(); err != nil {
		return err
	}
	t := track
	e.current = &t
	e.playing = true
	defer e.notifyAsync()
	return nil
}

// AddToQueue appends a track; the cursor stays where it is.
func (e *Engine) AddToQueue(track model.Track) {
	e.mu.Lock()
	e.queue.add(track)
	e.mu.Unlock()
	e.notify()
}

// SetQueue replaces the whole queue. The cursor and current track are left
// alone; call PlayTrack afterwards to re-establish cursor alignment.
func (e *Engine) SetQueue(tracks []model.Track) {
	e.mu.Lock()
	e.queue.replace(tracks)
	e.mu.Unlock()
	e.notify()
}

// Reset tears the session down: pause, drop the current track, zero the
// position and duration, empty the queue.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.transport.Pause(); err != nil {
		return err
	}
	e.current = nil
	e.playing = false
	e.position = 0
	e.duration = 0
	e.queue.clear()
	defer e.notifyAsync()
	return nil
}

// State returns a snapshot of the session.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	s := State{
		Playing:  e.playing,
		Position: e.position,
		Duration: e.duration,
		Volume:   e.volume,
		Queue:    e.queue.snapshot(),
		Cursor:   e.queue.cursor,
	}
	if e.current != nil {
		t := *e.current
		s.Current = &t
	}
	return s
}

// Subscribe registers a listener for state snapshots. Slow listeners miss
// intermediate states rather than blocking the engine.
func (e *Engine) Subscribe() <-chan State {
	ch := make(chan State, 16)
	e.mu.Lock()
	e.listeners = append(e.listeners, ch)
	e.mu.Unlock()
	return ch
}

// notify pushes the current snapshot to every listener, dropping it for
// listeners whose buffer is full. The sends happen under the read lock so
// Close, which closes the channels under the write lock, can never overlap
// with a send.
func (e *Engine) notify() {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state := e.stateLocked()
	for _, ch := range e.listeners {
		select {
		case ch <- state:
		default:
		}
	}
}

// notifyAsync schedules a notify for callers already holding e.mu.
func (e *Engine) notifyAsync() {
	go e.notify()
}

// Close shuts the transport down and closes all listener channels. The
// channels are closed under the write lock; see notify.
func (e *Engine) Close() error {
	err := e.transport.Close()

	e.mu.Lock()
	for _, ch := range e.listeners {
		close(ch)
	}
	e.listeners = nil
	e.mu.Unlock()

	close(e.done)
	return err
}

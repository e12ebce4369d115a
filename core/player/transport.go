package player

// Transport is the media playback primitive the engine drives. Implementations
// range from a local decoder to a connected browser client controlled over a
// websocket; the engine never assumes which one it has.
type Transport interface {
	// SetSource points the transport at a new audio URL. Position and
	// duration are implicitly reset by the transport.
	SetSource(url string) error
	Play() error
	Pause() error
	// SetPosition seeks to an absolute offset in seconds.
	SetPosition(seconds float64) error
	// SetVolume applies a level in [0, 1].
	SetVolume(level float64) error
	// Events delivers playback notifications until Close. The channel is
	// closed by the transport when it shuts down.
	Events() <-chan Event
	Close() error
}

// EventType identifies a transport notification.
type EventType int

const (
	// EventPosition reports the current playback offset in seconds.
	EventPosition EventType = iota
	// EventDuration reports the track's total length once metadata loads.
	EventDuration
	// EventEnded signals that the current track finished playing.
	EventEnded
)

// Event is a single notification from the transport.
type Event struct {
	Type    EventType
	Seconds float64
}

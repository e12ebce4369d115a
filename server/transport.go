package server

import (
	"sync"

	"github.com/gorilla/websocket"

	"melodex/core/player"
	"melodex/logger"
)

// transportCommand is what the server pushes to connected playback clients.
// The browser owns the actual audio element; the engine drives it remotely.
type transportCommand struct {
	Cmd     string  `json:"cmd"` // setSource, play, pause, setPosition, setVolume
	URL     string  `json:"url,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
	Level   float64 `json:"level,omitempty"`
}

// clientEvent is what a playback client reports back.
type clientEvent struct {
	Type    string  `json:"type"` // timeupdate, durationknown, ended
	Seconds float64 `json:"seconds"`
}

// commandBuffer is the per-client outbound queue depth. A client that falls
// this far behind is cut loose.
const commandBuffer = 64

// RemoteTransport implements the engine's transport over websockets: every
// command is broadcast to all connected clients, and client reports are fed
// back to the engine as transport events. With no client connected the
// commands go nowhere, which the engine treats the same as a stalled media
// element.
//
// A websocket connection tolerates only one concurrent writer, so the
// transport never writes connections itself: broadcast enqueues onto each
// client's command channel, and the connection's single writer goroutine
// (see PlayerWebSocketHandler) drains it.
type RemoteTransport struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]chan transportCommand
	events chan player.Event
	closed bool
}

func NewRemoteTransport() *RemoteTransport {
	return &RemoteTransport{
		conns:  make(map[*websocket.Conn]chan transportCommand),
		events: make(chan player.Event, 32),
	}
}

// attach registers a client and returns its command channel. The channel is
// closed on detach or transport close.
func (t *RemoteTransport) attach(conn *websocket.Conn) <-chan transportCommand {
	cmds := make(chan transportCommand, commandBuffer)
	t.mu.Lock()
	t.conns[conn] = cmds
	t.mu.Unlock()
	return cmds
}

func (t *RemoteTransport) detach(conn *websocket.Conn) {
	t.mu.Lock()
	if cmds, ok := t.conns[conn]; ok {
		delete(t.conns, conn)
		close(cmds)
	}
	t.mu.Unlock()
}

func (t *RemoteTransport) broadcast(cmd transportCommand) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for conn, cmds := range t.conns {
		select {
		case cmds <- cmd:
		default:
			logger.Warn("dropping stalled playback client")
			delete(t.conns, conn)
			close(cmds)
			conn.Close()
		}
	}
	return nil
}

// report feeds a client event into the engine. Events from a slow burst are
// dropped rather than blocking the read loop. The send happens under the
// lock so it can never race Close closing the events channel.
func (t *RemoteTransport) report(ev clientEvent) {
	var e player.Event
	switch ev.Type {
	case "timeupdate":
		e = player.Event{Type: player.EventPosition, Seconds: ev.Seconds}
	case "durationknown":
		e = player.Event{Type: player.EventDuration, Seconds: ev.Seconds}
	case "ended":
		e = player.Event{Type: player.EventEnded}
	default:
		logger.Warn("unknown client event", logger.String("type", ev.Type))
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.events <- e:
	default:
	}
}

func (t *RemoteTransport) SetSource(url string) error {
	return t.broadcast(transportCommand{Cmd: "setSource", URL: url})
}

func (t *RemoteTransport) Play() error {
	return t.broadcast(transportCommand{Cmd: "play"})
}

func (t *RemoteTransport) Pause() error {
	return t.broadcast(transportCommand{Cmd: "pause"})
}

func (t *RemoteTransport) SetPosition(seconds float64) error {
	return t.broadcast(transportCommand{Cmd: "setPosition", Seconds: seconds})
}

func (t *RemoteTransport) SetVolume(level float64) error {
	return t.broadcast(transportCommand{Cmd: "setVolume", Level: level})
}

func (t *RemoteTransport) Events() <-chan player.Event {
	return t.events
}

func (t *RemoteTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	for conn, cmds := range t.conns {
		delete(t.conns, conn)
		close(cmds)
		conn.Close()
	}
	close(t.events)
	return nil
}

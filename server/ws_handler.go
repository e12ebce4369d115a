package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"melodex/core/player"
	"melodex/logger"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func stateMessage(s player.State) map[string]interface{} {
	return map[string]interface{}{
		"type":  "state",
		"state": s,
	}
}

// PlayerWebSocketHandler attaches a playback client. The connection carries
// traffic both ways: transport commands and engine state snapshots go out,
// timeupdate/durationknown/ended reports come in. All outbound writes are
// funneled through one goroutine per connection; websocket connections do
// not tolerate concurrent writers.
func (h *APIHandler) PlayerWebSocketHandler(transport *RemoteTransport) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", logger.ErrorField(err))
			return
		}

		states := h.engine.Subscribe()
		cmds := transport.attach(conn)
		logger.Info("playback client connected", logger.String("remote", r.RemoteAddr))

		done := make(chan struct{})
		go func() {
			defer close(done)
			defer conn.Close()

			// A fresh client needs the current state before the first
			// change.
			if err := conn.WriteJSON(stateMessage(h.engine.State())); err != nil {
				return
			}

			for {
				select {
				case cmd, ok := <-cmds:
					if !ok {
						return
					}
					if err := conn.WriteJSON(cmd); err != nil {
						return
					}
				case state, ok := <-states:
					if !ok {
						return
					}
					if err := conn.WriteJSON(stateMessage(state)); err != nil {
						return
					}
				}
			}
		}()

		for {
			var ev clientEvent
			if err := conn.ReadJSON(&ev); err != nil {
				break
			}
			transport.report(ev)
		}

		transport.detach(conn)
		conn.Close()
		<-done
		logger.Info("playback client disconnected", logger.String("remote", r.RemoteAddr))
	}
}

package server

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"melodex/core/player"
	"melodex/model"
)

// Commands broadcast from API-request goroutines and state snapshots pushed
// by the subscription must come out of the socket as intact frames even when
// they are produced concurrently; all writes go through one goroutine per
// connection.
func TestPlayerWebSocket_ConcurrentCommandsAndState(t *testing.T) {
	transport := NewRemoteTransport()
	engine := player.NewEngine(transport)
	defer engine.Close()

	h := &APIHandler{engine: engine}
	srv := httptest.NewServer(h.PlayerWebSocketHandler(transport))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				track := model.Track{
					SongID: int64(g*100 + i),
					URL:    fmt.Sprintf("http://localhost/media/%d-%d", g, i),
					Title:  "T",
					Artist: "A",
				}
				if err := engine.PlayTrack(track); err != nil {
					t.Errorf("PlayTrack() error = %v", err)
				}
				if err := engine.SetVolume(0.5); err != nil {
					t.Errorf("SetVolume() error = %v", err)
				}
			}
		}(g)
	}

	// Every frame must parse; interleaved writes would corrupt them.
	for i := 0; i < 20; i++ {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("frame %d: ReadJSON() error = %v", i, err)
		}
	}
	wg.Wait()
}

func TestPlayerWebSocket_ReportsFeedEngine(t *testing.T) {
	transport := NewRemoteTransport()
	engine := player.NewEngine(transport)
	defer engine.Close()

	h := &APIHandler{engine: engine}
	srv := httptest.NewServer(h.PlayerWebSocketHandler(transport))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(clientEvent{Type: "timeupdate", Seconds: 42}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if engine.State().Position == 42 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("position = %v, want 42", engine.State().Position)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

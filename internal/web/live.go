package web

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The page and the socket are served from the same origin; embedding
	// dashboards elsewhere is allowed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleLive upgrades to a websocket and pushes every session log entry as
// JSON until the session stops or the client disconnects. This is the push
// feed for the presentation layer.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: live upgrade: %v", err)
		return
	}
	defer conn.Close()

	entries := s.sess.Subscribe()

	// Drain client frames so closes and pings are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case e, ok := <-entries:
			if !ok {
				// Session stopped; say goodbye cleanly.
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session stopped"))
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}

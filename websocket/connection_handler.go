// websocket/connection_handler.go
package websocket

import (
	"log"
	"net/http"

	"github.com/google/uuid"
)

// HandleConnections upgrades the request and subscribes it to the feed
func (h *Hub) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Error upgrading WebSocket connection:", err)
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		Socket: conn,
		Send:   make(chan []byte, sendBufferSize),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	log.Printf("✅ Feed subscriber %s from %s", client.ID, r.RemoteAddr)

	go client.writePump()
	go client.readPump(h)
}

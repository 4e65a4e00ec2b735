// websocket/read_pump.go
package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// readPump keeps the read deadline moving and notices disconnects. The
// feed is one-way, so frames a client sends are discarded.
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.Socket.Close()
	}()

	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Feed client %s: %v", c.ID, err)
			}
			return
		}
	}
}

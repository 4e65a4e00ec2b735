// websocket/manager.go
package websocket

import (
	"context"
	"encoding/json"
	"log"
)

// NewHub creates a hub; call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount(len(h.clients))
			log.Printf("👤 Feed client %s connected", client.ID)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				log.Printf("👤 Feed client %s disconnected", client.ID)
			}

		case message := <-h.broadcast:
			h.fanOut(message)

		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return
		}
	}
}

// fanOut sends message to every client; a client whose buffer is full is
// dropped instead of blocking the others.
func (h *Hub) fanOut(message []byte) {
	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
			log.Printf("⚠️ Feed client %s is too slow, dropping it", client.ID)
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	h.setCount(len(h.clients))
}

// Broadcast queues an event for every connected client. It never blocks the
// caller: when the queue is full the event is dropped.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Printf("❌ Error encoding %s event: %v", eventType, err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
		log.Printf("⚠️ Broadcast queue full, %s event dropped", eventType)
	}
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.countMu.RLock()
	defer h.countMu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.countMu.Lock()
	h.count = n
	h.countMu.Unlock()
}

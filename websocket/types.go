// websocket/types.go
package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is the envelope of every frame the hub sends.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client is one subscriber of the live prediction feed
type Client struct {
	ID     string
	Socket *websocket.Conn
	Send   chan []byte
}

// Hub fans prediction events out to every connected client. The client map
// is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	countMu sync.RWMutex
	count   int
}

// WebSocket upgrade settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards are served from other origins
	},
}

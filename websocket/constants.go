// websocket/constants.go
package websocket

import (
	"time"
)

// Connection settings
const (
	// Time allowed to write a frame to the client
	writeWait = 10 * time.Second

	// Time allowed between pongs from the client
	pongWait = 60 * time.Second

	// Ping period, shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Largest frame accepted from a client
	maxMessageSize = 4 * 1024

	// Frames buffered per client before it is dropped as too slow
	sendBufferSize = 256
)

// Event types
const (
	EventPrediction = "prediction"
	EventReading    = "reading"
)

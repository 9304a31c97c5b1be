package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs wires one upgraded connection into the hub and gateway. The
// sessionId comes from the query string; connections without one get a
// fresh id.
func ServeWs(hub *Hub, gateway *Gateway, c *websocket.Conn) {
	sessionId := c.Query("sessionId")
	if sessionId == "" {
		sessionId = uuid.New().String()
	}

	client := &Client{
		Hub:       hub,
		Conn:      c,
		SessionId: sessionId,
		Session:   NewSession(sessionId, gateway.autoDetectDefault),
		Send:      make(chan []byte, 256),
		gateway:   gateway,
	}
	client.Hub.register <- client

	go client.writePump()

	// Delivered directly so the acknowledgment cannot race the hub
	// registration.
	client.Send <- MarshalEvent(EventSessionUpdate, map[string]interface{}{
		"sessionId": sessionId,
		"status":    "ready",
	})

	// readPump runs in the handler goroutine; returning closes the conn.
	client.readPump()
}

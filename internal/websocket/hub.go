package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"live-assist-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "session_events"

// Hub tracks live session connections. With Redis configured it also
// relays outbound events across instances, so an admin action on one
// instance can reach a session connected to another. Redis is optional
// and the hub is fully functional without it.
type Hub struct {
	// sessionId -> client. One connection per session.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if existing, ok := h.clients[client.SessionId]; ok && existing != client {
				// A reconnect replaces the old connection.
				close(existing.Send)
			}
			h.clients[client.SessionId] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Session registered", map[string]interface{}{"session_id": client.SessionId})

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.SessionId]; ok && current == client {
				delete(h.clients, client.SessionId)
				close(client.Send)
				h.logger.Info("Hub", "Session unregistered", map[string]interface{}{"session_id": client.SessionId})
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers one framed event to a session, locally if connected
// here and via Redis for any other instance that may hold it.
func (h *Hub) Send(sessionId string, event string, data interface{}) {
	frame := MarshalEvent(event, data)

	h.mu.RLock()
	client, localFound := h.clients[sessionId]
	h.mu.RUnlock()

	if localFound {
		select {
		case client.Send <- frame:
		default:
			h.logger.Warn("Hub", "Send buffer full, dropping connection", map[string]interface{}{"session_id": sessionId})
			h.unregister <- client
		}
		return
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_session_id": sessionId,
			"message":           json.RawMessage(frame),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetSessionId string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Error("Hub", "Malformed cluster event", map[string]interface{}{"error": err.Error()})
			continue
		}

		h.mu.RLock()
		client, ok := h.clients[payload.TargetSessionId]
		h.mu.RUnlock()

		if ok {
			select {
			case client.Send <- payload.Message:
			default:
				h.unregister <- client
			}
		}
	}
}

package websocket

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// WSEvent is the frame mirrored to connected UI clients whenever the buddy
// engine fans out an event.
type WSEvent struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub keeps the set of connected UI clients and pushes buddy events to all
// of them. The engine talks to it through the BuddyBroadcaster interface.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Broadcast events to all clients
	broadcast chan WSEvent

	// Mutex for thread safety
	mutex sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan WSEvent, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.Debug("WebSocket client connected: ", client.id)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			logrus.Debug("WebSocket client disconnected: ", client.id)

		case event := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Slow consumer, drop the connection
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastBuddyEvent implements interfaces.BuddyBroadcaster. It never
// blocks engine operations: a full broadcast queue drops the event.
func (h *Hub) BroadcastBuddyEvent(eventType string, payload interface{}) {
	event := WSEvent{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
		logrus.Warn("WebSocket broadcast queue full, dropping event: ", eventType)
	}
}

// ConnectedClients reports the current connection count.
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

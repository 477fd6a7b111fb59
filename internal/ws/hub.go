package ws

import (
	"encoding/json"
	"sync"

	"github.com/jshan/storefront-backend/internal/events"
	"github.com/jshan/storefront-backend/pkg/logger"
)

// Client is one WebSocket session of a signed-in user.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub fans order status events out to the owner's live sessions. The feed
// is one-way: clients never publish, they only listen.
type Hub struct {
	// UserID -> sessions, multiple devices per user
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	notify     chan events.OrderStatusChanged

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		notify:     make(chan events.OrderStatusChanged, 1024),
	}
}

// Run processes registrations and event delivery until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("Order feed client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": h.sessionCount(client.UserID),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}
				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("Order feed client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case evt := <-h.notify:
			h.deliver(evt)
		}
	}
}

// Consume drains a bus subscription into the hub. Intended to run as a
// goroutine next to Run.
func (h *Hub) Consume(ch <-chan events.OrderStatusChanged) {
	for evt := range ch {
		h.Notify(evt)
	}
}

// Notify queues an event for delivery to the order owner's sessions.
// Delivery is best effort; a full queue drops the event.
func (h *Hub) Notify(evt events.OrderStatusChanged) {
	select {
	case h.notify <- evt:
	default:
		logger.Warn("Order feed queue full, event dropped", map[string]interface{}{
			"order_id": evt.OrderID,
			"user_id":  evt.UserID,
		})
	}
}

func (h *Hub) deliver(evt events.OrderStatusChanged) {
	data, err := json.Marshal(evt)
	if err != nil {
		logger.Error("Failed to marshal order event", err, map[string]interface{}{
			"order_id": evt.OrderID,
		})
		return
	}

	h.mu.RLock()
	clientList := h.clients[evt.UserID]
	h.mu.RUnlock()

	for _, client := range clientList {
		select {
		case client.Send <- data:
		default:
			// Send buffer full, the session is too slow to keep
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": evt.UserID,
			})
		}
	}
}

// Register adds a session to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a session from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether the user has at least one live session.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) sessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
)

// Client is one websocket session. Guests connect with UserID zero;
// authenticated users carry their id so notifications can be targeted.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub manages websocket sessions and fans catalog and notification
// events out to them. Construct with NewHub and run Run in its own
// goroutine; services receive the hub by injection.
type Hub struct {
	// UserID -> sessions (multi-device, guests pooled under zero)
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client

	// fan-out to every connected session
	broadcast chan []byte

	// fan-out to one user's sessions
	direct chan *directMessage

	mu sync.RWMutex
}

type directMessage struct {
	UserID  uint
	Message []byte
}

// NewHub creates a hub ready to Run
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
		direct:     make(chan *directMessage, 1024),
	}
}

// Run processes registration and message traffic until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Debug("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			found := false
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					} else {
						found = true
					}
				}

				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}
			}
			if found {
				// Close exactly once; a repeated unregister for the
				// same client is a no-op.
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Debug("WebSocket client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, clientList := range h.clients {
				for _, client := range clientList {
					h.deliver(client, message)
				}
			}
			h.mu.RUnlock()

		case dm := <-h.direct:
			h.mu.RLock()
			if clientList, ok := h.clients[dm.UserID]; ok {
				for _, client := range clientList {
					h.deliver(client, dm.Message)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// deliver pushes a frame to one session, disconnecting slow consumers
// instead of blocking the hub loop
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		go h.Unregister(client)
		logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
			"user_id": client.UserID,
		})
	}
}

// Register enqueues a client registration
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister enqueues a client removal
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether a user has at least one live session
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// BroadcastProductEvent sends a catalog event to every connected
// session. Delivery is best-effort; a full broadcast queue drops the
// event rather than stalling catalog writes.
func (h *Hub) BroadcastProductEvent(event string, product *model.Product) {
	var data interface{}
	if event == EventProductRemoved {
		data = RemovedPayload{ID: product.ID, ProductID: product.ProductID}
	} else {
		data = NewProductPayload(product)
	}
	h.broadcastEvent(Event{Event: event, Data: data})
}

// SendToUser pushes a notification event to all of one user's sessions.
// The product, when known, is embedded as a render-ready summary.
func (h *Hub) SendToUser(userID uint, n *model.Notification, product *model.Product) {
	payload := NotificationPayload{
		ID:        n.ID,
		ProductID: n.ProductID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if product != nil {
		payload.Product = NotificationProduct{
			Name:      product.Name,
			Thumbnail: product.FirstImageURL(),
		}
	}

	data, err := json.Marshal(Event{Event: EventNotification, Data: payload})
	if err != nil {
		logger.Error("Failed to marshal notification event", err, nil)
		return
	}

	select {
	case h.direct <- &directMessage{UserID: userID, Message: data}:
	default:
		logger.Warn("Direct channel full, notification event dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
}

func (h *Hub) broadcastEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal broadcast event", err, nil)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"event": event.Event,
		})
	}
}

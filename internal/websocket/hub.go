package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub maintains the set of connected dashboard clients and pushes
// order-update events to all of them. Clients never send commands; the
// feed is one-way.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("🔌 Dashboard connected: %s", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("🔌 Dashboard disconnected: %s", client.ID)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead, drop the event
				}
			}
			h.mu.RUnlock()
		}
	}
}

// OrdersUpdated implements the orders service Notifier: every mutation
// fans out one event so dashboards refetch their view.
func (h *Hub) OrdersUpdated(event string) {
	msg, err := json.Marshal(map[string]interface{}{
		"event": "orders_updated",
		"cause": event,
		"at":    time.Now().UnixMilli(),
	})
	if err != nil {
		log.Printf("Error marshaling ws event: %v", err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		// Nobody draining the hub yet
	}
}

// Package websocket pushes sync events to connected terminal UIs, so the
// cashier screen can show sync progress without polling.
package websocket

import (
	"encoding/json"
	"log"
	"sync"

	possync "github.com/openretail/possync/internal/sync"
)

// Hub maintains the set of connected listeners and fans events out to them.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		clients:    make(map[string]*Client),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				close(old.send)
				delete(h.clients, client.ID)
			}
			h.clients[client.ID] = client
			log.Printf("📱 UI client connected: %s", client.ID)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				log.Printf("📴 UI client disconnected: %s", client.ID)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop for this client.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a typed event to every connected client.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		log.Printf("⚠️ Event queue full, dropping %s event", eventType)
	}
}

// NotifyReport implements sync.Notifier: each finished run is pushed to
// the UI as one event.
func (h *Hub) NotifyReport(rep possync.Report) {
	h.Broadcast("sync_report", rep)
}

package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Hub fans session events out to the websocket clients watching a class
// meeting. Rooms are named by session.Room.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.mu.Lock()
			h.removeClientLocked(client)
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.broadcastToRoom(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.rooms[client.room] == nil {
		h.rooms[client.room] = make(map[*Client]bool)
	}
	h.rooms[client.room][client] = true
}

func (h *Hub) removeClientLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	delete(h.rooms[client.room], client)
	if len(h.rooms[client.room]) == 0 {
		delete(h.rooms, client.room)
	}

	close(client.send)
}

func (h *Hub) broadcastToRoom(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	// slow clients are dropped, so the map is mutated under the write lock
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[event.Room] {
		select {
		case client.send <- message:
		default:
			h.removeClientLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.removeClientLocked(client)
	}
}

// Broadcast queues an event for a room. It never blocks the caller; events
// are dropped when the queue is full.
func (h *Hub) Broadcast(room, eventType string, data any) {
	event := Event{
		Room:      room,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) ConnectedClients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}

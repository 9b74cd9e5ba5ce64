package websocket

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/frl-games/storychain-backend/internal/message"
)

// client wraps a connection with a write lock; gorilla connections do
// not allow concurrent writers.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (that *client) write(msg message.Message) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	return that.conn.WriteJSON(msg)
}

// Hub tracks live connections and their room membership, and delivers
// outbound messages. It is the broadcast collaborator the coordinator
// talks to; delivery is best-effort and failures are only logged.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,

		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// Add registers a freshly upgraded connection under its id.
func (that *Hub) Add(connID string, conn *websocket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[connID] = &client{conn: conn}
}

// JoinRoom adds a connection to a room's broadcast group.
func (that *Hub) JoinRoom(roomCode, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[roomCode]
	if !ok {
		members = make(map[string]struct{})
		that.rooms[roomCode] = members
	}

	members[connID] = struct{}{}
}

// Drop closes a connection and removes it from every room.
func (that *Hub) Drop(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if receiver, ok := that.clients[connID]; ok {
		_ = receiver.conn.Close()
	}
	delete(that.clients, connID)

	for roomCode, members := range that.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(that.rooms, roomCode)
		}
	}
}

// Unicast sends a message to a single connection.
func (that *Hub) Unicast(connID string, msg message.Message) {
	that.mu.RLock()
	receiver, ok := that.clients[connID]
	that.mu.RUnlock()

	if !ok {
		that.logger.Warn("connection not found", "connID", connID)
		return
	}

	if err := receiver.write(msg); err != nil {
		that.logger.Error("failed to send message", "connID", connID, "action", msg.Action, "error", err)
	}
}

// Broadcast sends a message to every connection in a room, minus the
// excluded ones.
func (that *Hub) Broadcast(roomCode string, msg message.Message, exclude ...string) {
	that.mu.RLock()
	receivers := make([]*client, 0, len(that.rooms[roomCode]))
	for connID := range that.rooms[roomCode] {
		if slices.Contains(exclude, connID) {
			continue
		}

		if receiver, ok := that.clients[connID]; ok {
			receivers = append(receivers, receiver)
		}
	}
	that.mu.RUnlock()

	for _, receiver := range receivers {
		if err := receiver.write(msg); err != nil {
			that.logger.Error("failed to send message", "roomCode", roomCode, "action", msg.Action, "error", err)
		}
	}
}

package ws

import (
	"fmt"
	"sync"
)

// Broadcaster is the room registry seen by sessions. The in-process Hub is
// the default implementation; a pub/sub backed one can replace it without
// touching session logic.
type Broadcaster interface {
	Join(roomKey string, c *Client)
	Leave(roomKey string, c *Client)
	Broadcast(roomKey string, payload []byte)
}

// PrivateRoomKey derives the room key for a conversation.
func PrivateRoomKey(conversationID uint) string {
	return fmt.Sprintf("private_chat_%d", conversationID)
}

// RouteRoomKey derives the room key for a route's chat.
func RouteRoomKey(routeID uint) string {
	return fmt.Sprintf("route_chat_%d", routeID)
}

// Hub maps room keys to the set of live connections subscribed to them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Join(roomKey string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomKey]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[roomKey] = room
	}
	room[c] = true
}

// Leave removes the connection; a no-op if it was never joined. Empty rooms
// are pruned so an idle hub holds no state.
func (h *Hub) Leave(roomKey string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomKey]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, roomKey)
	}
}

// Broadcast delivers the payload to every member of the room, the sender
// included. It iterates over a snapshot taken under the read lock, so a
// member disconnecting mid-broadcast cannot corrupt the iteration; delivery
// to an already-dead member is dropped silently.
func (h *Hub) Broadcast(roomKey string, payload []byte) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[roomKey]))
	for c := range h.rooms[roomKey] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.enqueue(payload)
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey])
}

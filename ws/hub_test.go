package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waylines/waylines/models"
)

func testClient(id uint) *Client {
	return &Client{
		send: make(chan []byte, sendBuffer),
		user: &models.User{Model: models.Model{ID: id}},
	}
}

func TestRoomKeys(t *testing.T) {
	assert.Equal(t, "private_chat_42", PrivateRoomKey(42))
	assert.Equal(t, "route_chat_7", RouteRoomKey(7))
	// two sessions joining the same ID land in the same broadcast group
	assert.Equal(t, PrivateRoomKey(3), PrivateRoomKey(3))
}

func TestJoinLeaveBroadcast(t *testing.T) {
	hub := NewHub()
	a := testClient(1)
	b := testClient(2)

	room := PrivateRoomKey(1)
	hub.Join(room, a)
	hub.Join(room, b)
	assert.Equal(t, 2, hub.RoomSize(room))

	hub.Broadcast(room, []byte("hello"))
	assert.Equal(t, []byte("hello"), <-a.send)
	assert.Equal(t, []byte("hello"), <-b.send)

	hub.Leave(room, a)
	assert.Equal(t, 1, hub.RoomSize(room))

	hub.Broadcast(room, []byte("again"))
	assert.Equal(t, []byte("again"), <-b.send)
	select {
	case payload := <-a.send:
		t.Fatalf("left client received %q", payload)
	default:
	}
}

func TestLeaveUnknownRoomIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Leave("route_chat_999", testClient(1))
	assert.Equal(t, 0, hub.RoomSize("route_chat_999"))
}

func TestEmptyRoomsArePruned(t *testing.T) {
	hub := NewHub()
	c := testClient(1)
	room := RouteRoomKey(5)

	hub.Join(room, c)
	hub.Leave(room, c)

	hub.mu.RLock()
	_, exists := hub.rooms[room]
	hub.mu.RUnlock()
	assert.False(t, exists)
}

func TestBroadcastToSeparateRoomsIsIsolated(t *testing.T) {
	hub := NewHub()
	a := testClient(1)
	b := testClient(2)
	hub.Join(PrivateRoomKey(1), a)
	hub.Join(PrivateRoomKey(2), b)

	hub.Broadcast(PrivateRoomKey(1), []byte("only a"))
	assert.Equal(t, []byte("only a"), <-a.send)
	select {
	case payload := <-b.send:
		t.Fatalf("wrong room received %q", payload)
	default:
	}
}

func TestBroadcastDropsForFullBuffer(t *testing.T) {
	hub := NewHub()
	slow := testClient(1)
	room := RouteRoomKey(1)
	hub.Join(room, slow)

	for i := 0; i < sendBuffer; i++ {
		hub.Broadcast(room, []byte("fill"))
	}
	// the overflowing frame is dropped, the broadcast does not block
	hub.Broadcast(room, []byte("overflow"))
	require.Len(t, slow.send, sendBuffer)
}

func TestBroadcastToClosedClientIsIgnored(t *testing.T) {
	hub := NewHub()
	dead := testClient(1)
	room := RouteRoomKey(2)
	hub.Join(room, dead)
	close(dead.send)

	// a dead member left in the registry must not abort delivery
	assert.NotPanics(t, func() {
		hub.Broadcast(room, []byte("late"))
	})
}

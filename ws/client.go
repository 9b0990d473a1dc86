package ws

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/waylines/waylines/models"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 4096
	sendBuffer   = 64
)

// Client is one live connection: Connecting → Joined → Closed. By the time
// a Client exists the access gate has already passed; readPump owns the
// lifecycle and readPump returning means Closed.
type Client struct {
	hub  Broadcaster
	conn *websocket.Conn
	send chan []byte
	user *models.User
	sess session
}

func newClient(hub Broadcaster, conn *websocket.Conn, user *models.User, sess session) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		user: user,
		sess: sess,
	}
}

// run joins the room, pushes the history snapshot to this connection only,
// announces presence where the variant does, then serves inbound events
// until the connection dies.
func (c *Client) run() {
	key := c.sess.roomKey()
	c.hub.Join(key, c)
	go c.writePump()

	c.sendHistory()
	if c.sess.announcesPresence() {
		c.hub.Broadcast(key, mustMarshal(presenceEvent{
			Type:     EventUserOnline,
			UserID:   c.user.ID,
			Username: c.user.Username,
		}))
	}

	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		key := c.sess.roomKey()
		if c.sess.announcesPresence() {
			c.hub.Broadcast(key, mustMarshal(presenceEvent{
				Type:     EventUserOffline,
				UserID:   c.user.ID,
				Username: c.user.Username,
			}))
		}
		c.hub.Leave(key, c)
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handle(raw)
	}
}

// handle dispatches one inbound frame. Whatever goes wrong is converted to
// an error event to this sender; the session stays Joined.
func (c *Client) handle(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("chat session panic (user %d): %v", c.user.ID, r)
			c.sendError("internal error")
		}
	}()

	in, err := decodeInbound(raw)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	switch in.Type {
	case EventChatMessage:
		payload, err := c.sess.saveMessage(in.Message)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		// persistence happened above; broadcast after, so delivery order
		// within the room matches persistence order
		c.hub.Broadcast(c.sess.roomKey(), payload)
	case EventUserTyping, EventUserStopTyping:
		c.hub.Broadcast(c.sess.roomKey(), mustMarshal(typingEvent{
			Type:     in.Type,
			UserID:   in.UserID,
			Username: in.Username,
		}))
	case EventGetHistory:
		c.sendHistory()
	case EventPing:
		c.enqueue(mustMarshal(pongEvent{Type: EventPong}))
	}
}

func (c *Client) sendHistory() {
	payload, err := c.sess.history()
	if err != nil {
		log.Printf("chat history fetch failed (user %d): %v", c.user.ID, err)
		c.sendError("could not load history")
		return
	}
	c.enqueue(payload)
}

func (c *Client) sendError(message string) {
	c.enqueue(mustMarshal(errorEvent{Type: EventError, Error: message}))
}

// enqueue hands a payload to the write pump without blocking; a slow client
// whose buffer is full loses the frame rather than stalling the room.
func (c *Client) enqueue(payload []byte) {
	defer func() {
		// the send channel closes when readPump exits; a broadcast racing
		// that close is dropped like any other dead-member delivery
		_ = recover()
	}()
	select {
	case c.send <- payload:
	default:
		log.Printf("dropping frame for slow client (user %d)", c.user.ID)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package ws

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Client→server and server→client event kinds. Inbound events outside this
// set are rejected with an error event rather than silently ignored.
const (
	EventChatMessage      = "chat_message"
	EventRouteChatMessage = "route_chat_message"
	EventUserTyping       = "user_typing"
	EventUserStopTyping   = "user_stop_typing"
	EventGetHistory       = "get_history"
	EventPing             = "ping"
	EventPong             = "pong"
	EventHistory          = "history"
	EventUserOnline       = "user_online"
	EventUserOffline      = "user_offline"
	EventError            = "error"
)

var (
	errInvalidJSON  = errors.New("Invalid JSON")
	errUnknownEvent = errors.New("unknown event type")
)

// Inbound is the decoded client frame. UserID/Username are informational
// payload fields on typing events; message identity always comes from the
// authenticated session.
type Inbound struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

func decodeInbound(raw []byte) (*Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, errInvalidJSON
	}
	if in.Type == "" {
		in.Type = EventChatMessage
	}
	switch in.Type {
	case EventChatMessage, EventUserTyping, EventUserStopTyping, EventGetHistory, EventPing:
		return &in, nil
	}
	return nil, errUnknownEvent
}

// HistoryItem is one entry of the history snapshot, oldest first.
type HistoryItem struct {
	ID        uint   `json:"id"`
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	SenderID  uint   `json:"sender_id"`
	CreatedAt string `json:"created_at"`
}

type historyEvent struct {
	Type     string        `json:"type"`
	Messages []HistoryItem `json:"messages"`
}

type messageEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	MessageID uint   `json:"message_id"`
	Timestamp string `json:"timestamp"`
}

type typingEvent struct {
	Type     string `json:"type"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

type presenceEvent struct {
	Type     string `json:"type"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

type pongEvent struct {
	Type string `json:"type"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// timeOfDay renders server timestamps the way clients display them.
func timeOfDay(t time.Time) string {
	return t.Format("15:04")
}

func mustMarshal(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		// all outbound event types marshal cleanly; this is unreachable
		panic(err)
	}
	return raw
}

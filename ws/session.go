package ws

import (
	"github.com/waylines/waylines/models"
	"github.com/waylines/waylines/services"
)

// session is the variant-specific half of a chat connection: where messages
// go, what the broadcast event is called, and whether presence is announced.
type session interface {
	roomKey() string
	saveMessage(text string) ([]byte, error)
	history() ([]byte, error)
	announcesPresence() bool
}

type privateSession struct {
	conversationID uint
	user           *models.User
	chat           services.ChatService
}

func (s *privateSession) roomKey() string {
	return PrivateRoomKey(s.conversationID)
}

func (s *privateSession) saveMessage(text string) ([]byte, error) {
	message, err := s.chat.SendPrivateMessage(s.conversationID, s.user.ID, text)
	if err != nil {
		return nil, err
	}
	return mustMarshal(messageEvent{
		Type:      EventChatMessage,
		Message:   message.Content,
		UserID:    message.SenderID,
		Username:  message.Sender.Username,
		MessageID: message.ID,
		Timestamp: timeOfDay(message.CreatedAt),
	}), nil
}

func (s *privateSession) history() ([]byte, error) {
	messages, err := s.chat.PrivateHistory(s.conversationID, services.HistoryLimit)
	if err != nil {
		return nil, err
	}
	items := make([]HistoryItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, HistoryItem{
			ID:        m.ID,
			Content:   m.Content,
			Sender:    m.Sender.Username,
			SenderID:  m.SenderID,
			CreatedAt: timeOfDay(m.CreatedAt),
		})
	}
	return mustMarshal(historyEvent{Type: EventHistory, Messages: items}), nil
}

func (s *privateSession) announcesPresence() bool { return true }

type routeSession struct {
	routeID uint
	user    *models.User
	chat    services.ChatService
}

func (s *routeSession) roomKey() string {
	return RouteRoomKey(s.routeID)
}

func (s *routeSession) saveMessage(text string) ([]byte, error) {
	message, err := s.chat.SendRouteMessage(s.routeID, s.user.ID, text)
	if err != nil {
		return nil, err
	}
	return mustMarshal(messageEvent{
		Type:      EventRouteChatMessage,
		Message:   message.Message,
		UserID:    message.UserID,
		Username:  message.User.Username,
		MessageID: message.ID,
		Timestamp: timeOfDay(message.CreatedAt),
	}), nil
}

func (s *routeSession) history() ([]byte, error) {
	messages, err := s.chat.RouteHistory(s.routeID, services.HistoryLimit)
	if err != nil {
		return nil, err
	}
	items := make([]HistoryItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, HistoryItem{
			ID:        m.ID,
			Content:   m.Message,
			Sender:    m.User.Username,
			SenderID:  m.UserID,
			CreatedAt: timeOfDay(m.CreatedAt),
		})
	}
	return mustMarshal(historyEvent{Type: EventHistory, Messages: items}), nil
}

func (s *routeSession) announcesPresence() bool { return false }

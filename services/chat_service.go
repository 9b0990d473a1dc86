package services

import (
	stderrors "errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/waylines/waylines/config"
	"github.com/waylines/waylines/db"
	apiError "github.com/waylines/waylines/errors"
	"github.com/waylines/waylines/models"
	"gorm.io/gorm"
)

// HistoryLimit bounds the snapshot sent to a newly joined connection.
const HistoryLimit = 50

// ValidateMessage trims the text and enforces the content bounds. The
// returned string is what gets persisted.
func ValidateMessage(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", apiError.ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > models.MaxMessageLength {
		return "", apiError.ErrMessageTooLong
	}
	return trimmed, nil
}

// UserBrief is the participant shape embedded in dashboard summaries.
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

type ConversationSummary struct {
	ConversationID uint                   `json:"conversation_id"`
	OtherUser      UserBrief              `json:"other_user"`
	UnreadCount    int64                  `json:"unread_count"`
	LastMessage    *models.PrivateMessage `json:"last_message,omitempty"`
}

type Dashboard struct {
	Conversations []ConversationSummary `json:"conversations"`
	RouteChats    []db.RouteChatSummary `json:"route_chats"`
}

// ChatService is the message store plus its side effects: persistence,
// dashboard cache invalidation and best-effort push notifications.
type ChatService interface {
	StartConversation(userID, otherUserID uint) (*models.Conversation, []models.PrivateMessage, error)
	ConversationForUser(conversationID, userID uint) (*models.Conversation, error)
	SendPrivateMessage(conversationID, senderID uint, text string) (*models.PrivateMessage, error)
	SendRouteMessage(routeID, userID uint, text string) (*models.RouteChatMessage, error)
	PrivateHistory(conversationID uint, limit int) ([]models.PrivateMessage, error)
	RouteHistory(routeID uint, limit int) ([]models.RouteChatMessage, error)
	MarkConversationRead(conversationID, readerID uint) error
	Dashboard(userID uint) (*Dashboard, error)
}

// chatService struct
type chatService struct {
	Config   *config.Config
	chatRepo db.ChatRepository
	authRepo db.AuthRepository
	cache    DashboardCache
	notifier Notifier
}

// NewChatService creates a new instance of ChatService
func NewChatService(chatRepo db.ChatRepository, authRepo db.AuthRepository, cache DashboardCache, notifier Notifier, conf *config.Config) ChatService {
	return &chatService{
		Config:   conf,
		chatRepo: chatRepo,
		authRepo: authRepo,
		cache:    cache,
		notifier: notifier,
	}
}

func (s *chatService) StartConversation(userID, otherUserID uint) (*models.Conversation, []models.PrivateMessage, error) {
	if userID == otherUserID {
		return nil, nil, apiError.New("cannot start a conversation with yourself", http.StatusBadRequest)
	}
	if _, err := s.authRepo.FindUserByID(otherUserID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apiError.ErrNotFound
		}
		return nil, nil, apiError.ErrInternalServerError
	}

	conversation, err := s.chatRepo.GetOrCreateConversation(userID, otherUserID)
	if err != nil {
		return nil, nil, apiError.ErrInternalServerError
	}
	if err := s.chatRepo.MarkConversationRead(conversation.ID, userID); err != nil {
		return nil, nil, apiError.ErrInternalServerError
	}
	messages, err := s.chatRepo.PrivateHistory(conversation.ID, 100)
	if err != nil {
		return nil, nil, apiError.ErrInternalServerError
	}
	return conversation, messages, nil
}

// ConversationForUser loads a conversation and enforces participant
// membership, the access gate for private rooms.
func (s *chatService) ConversationForUser(conversationID, userID uint) (*models.Conversation, error) {
	conversation, err := s.chatRepo.FindConversationByID(conversationID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		return nil, apiError.ErrInternalServerError
	}
	if !conversation.HasParticipant(userID) {
		return nil, apiError.ErrForbidden
	}
	return conversation, nil
}

func (s *chatService) SendPrivateMessage(conversationID, senderID uint, text string) (*models.PrivateMessage, error) {
	content, err := ValidateMessage(text)
	if err != nil {
		return nil, err
	}
	conversation, err := s.ConversationForUser(conversationID, senderID)
	if err != nil {
		return nil, err
	}
	message, err := s.chatRepo.SavePrivateMessage(conversationID, senderID, content)
	if err != nil {
		return nil, apiError.ErrInternalServerError
	}

	otherID := conversation.OtherParticipantID(senderID)
	go s.afterPrivateSend(senderID, otherID, message)
	return message, nil
}

// afterPrivateSend runs the fire-and-forget side effects of a private send.
func (s *chatService) afterPrivateSend(senderID, otherID uint, message *models.PrivateMessage) {
	s.cache.Invalidate(senderID)
	s.cache.Invalidate(otherID)
	if other, err := s.authRepo.FindUserByID(otherID); err == nil {
		s.notifier.Notify(other.DeviceToken, "New message from "+message.Sender.Username, message.Content)
	}
}

func (s *chatService) SendRouteMessage(routeID, userID uint, text string) (*models.RouteChatMessage, error) {
	content, err := ValidateMessage(text)
	if err != nil {
		return nil, err
	}
	message, err := s.chatRepo.SaveRouteMessage(routeID, userID, content)
	if err != nil {
		return nil, apiError.ErrInternalServerError
	}
	go s.cache.Invalidate(userID)
	return message, nil
}

func (s *chatService) PrivateHistory(conversationID uint, limit int) ([]models.PrivateMessage, error) {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return s.chatRepo.PrivateHistory(conversationID, limit)
}

func (s *chatService) RouteHistory(routeID uint, limit int) ([]models.RouteChatMessage, error) {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return s.chatRepo.RouteHistory(routeID, limit)
}

func (s *chatService) MarkConversationRead(conversationID, readerID uint) error {
	if _, err := s.ConversationForUser(conversationID, readerID); err != nil {
		return err
	}
	if err := s.chatRepo.MarkConversationRead(conversationID, readerID); err != nil {
		return apiError.ErrInternalServerError
	}
	go s.cache.Invalidate(readerID)
	return nil
}

func (s *chatService) Dashboard(userID uint) (*Dashboard, error) {
	var cached Dashboard
	if s.cache.Get(userID, &cached) {
		return &cached, nil
	}

	conversations, err := s.chatRepo.ListConversations(userID)
	if err != nil {
		return nil, apiError.ErrInternalServerError
	}
	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		other := conversation.UserLow
		if other.ID == userID {
			other = conversation.UserHigh
		}
		unread, err := s.chatRepo.UnreadPrivateCount(conversation.ID, userID)
		if err != nil {
			return nil, apiError.ErrInternalServerError
		}
		last, err := s.chatRepo.LastPrivateMessage(conversation.ID)
		if err != nil {
			return nil, apiError.ErrInternalServerError
		}
		summaries = append(summaries, ConversationSummary{
			ConversationID: conversation.ID,
			OtherUser:      UserBrief{ID: other.ID, Username: other.Username, Fullname: other.Fullname},
			UnreadCount:    unread,
			LastMessage:    last,
		})
	}

	routeChats, err := s.chatRepo.RouteChatSummaries(userID)
	if err != nil {
		return nil, apiError.ErrInternalServerError
	}

	dashboard := &Dashboard{Conversations: summaries, RouteChats: routeChats}
	s.cache.Set(userID, dashboard)
	return dashboard, nil
}

package db

import (
	"time"

	"github.com/pkg/errors"
	"github.com/waylines/waylines/models"
	"gorm.io/gorm"
)

// RouteChatSummary is a dashboard row for one route chat.
type RouteChatSummary struct {
	RouteID      uint   `json:"route_id"`
	RouteName    string `json:"route_name"`
	MessageCount int64  `json:"message_count"`
}

// ChatRepository is the durable store behind both chat variants. Writes that
// pair a message with its parent's activity timestamp run in one transaction,
// so readers never observe a bumped timestamp without the message.
type ChatRepository interface {
	GetOrCreateConversation(userA, userB uint) (*models.Conversation, error)
	FindConversationByID(id uint) (*models.Conversation, error)
	ListConversations(userID uint) ([]models.Conversation, error)
	SavePrivateMessage(conversationID, senderID uint, content string) (*models.PrivateMessage, error)
	PrivateHistory(conversationID uint, limit int) ([]models.PrivateMessage, error)
	MarkConversationRead(conversationID, readerID uint) error
	UnreadPrivateCount(conversationID, userID uint) (int64, error)
	LastPrivateMessage(conversationID uint) (*models.PrivateMessage, error)

	GetOrCreateRouteChat(routeID uint) (*models.RouteChat, error)
	SaveRouteMessage(routeID, userID uint, message string) (*models.RouteChatMessage, error)
	RouteHistory(routeID uint, limit int) ([]models.RouteChatMessage, error)
	RouteChatSummaries(authorID uint) ([]RouteChatSummary, error)
}

// chatRepo struct
type chatRepo struct {
	DB *gorm.DB
}

// NewChatRepo creates a new instance of ChatRepository
func NewChatRepo(db *GormDB) ChatRepository {
	return &chatRepo{db.DB}
}

func (r *chatRepo) GetOrCreateConversation(userA, userB uint) (*models.Conversation, error) {
	low, high := models.ConversationPair(userA, userB)
	var conversation models.Conversation
	err := r.DB.Where(models.Conversation{UserLowID: low, UserHighID: high}).
		FirstOrCreate(&conversation).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not get or create conversation")
	}
	return &conversation, nil
}

func (r *chatRepo) FindConversationByID(id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.DB.Preload("UserLow").Preload("UserHigh").First(&conversation, id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *chatRepo) ListConversations(userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.DB.Preload("UserLow").Preload("UserHigh").
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&conversations).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not list conversations")
	}
	return conversations, nil
}

func (r *chatRepo) SavePrivateMessage(conversationID, senderID uint, content string) (*models.PrivateMessage, error) {
	message := models.PrivateMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not save private message")
	}
	if err := r.DB.Preload("Sender").First(&message, message.ID).Error; err != nil {
		return nil, errors.Wrap(err, "could not load saved message")
	}
	return &message, nil
}

// PrivateHistory returns up to limit most-recent messages in chronological
// order. The query runs newest-first and the slice is reversed for delivery.
func (r *chatRepo) PrivateHistory(conversationID uint, limit int) ([]models.PrivateMessage, error) {
	var messages []models.PrivateMessage
	err := r.DB.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not load private history")
	}
	reverseInPlace(messages)
	return messages, nil
}

func (r *chatRepo) MarkConversationRead(conversationID, readerID uint) error {
	return r.DB.Model(&models.PrivateMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true).Error
}

func (r *chatRepo) UnreadPrivateCount(conversationID, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.PrivateMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error
	return count, err
}

func (r *chatRepo) LastPrivateMessage(conversationID uint) (*models.PrivateMessage, error) {
	var message models.PrivateMessage
	err := r.DB.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at desc").Order("id desc").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *chatRepo) GetOrCreateRouteChat(routeID uint) (*models.RouteChat, error) {
	var chat models.RouteChat
	err := r.DB.Where(models.RouteChat{RouteID: routeID}).
		Attrs(models.RouteChat{IsActive: true}).
		FirstOrCreate(&chat).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not get or create route chat")
	}
	return &chat, nil
}

func (r *chatRepo) SaveRouteMessage(routeID, userID uint, messageText string) (*models.RouteChatMessage, error) {
	chat, err := r.GetOrCreateRouteChat(routeID)
	if err != nil {
		return nil, err
	}
	message := models.RouteChatMessage{
		RouteChatID: chat.ID,
		UserID:      userID,
		Message:     messageText,
	}
	err = r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&models.RouteChat{}).
			Where("id = ?", chat.ID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not save route message")
	}
	if err := r.DB.Preload("User").First(&message, message.ID).Error; err != nil {
		return nil, errors.Wrap(err, "could not load saved message")
	}
	return &message, nil
}

func (r *chatRepo) RouteHistory(routeID uint, limit int) ([]models.RouteChatMessage, error) {
	chat, err := r.GetOrCreateRouteChat(routeID)
	if err != nil {
		return nil, err
	}
	var messages []models.RouteChatMessage
	err = r.DB.Preload("User").
		Where("route_chat_id = ?", chat.ID).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not load route history")
	}
	reverseInPlace(messages)
	return messages, nil
}

func (r *chatRepo) RouteChatSummaries(authorID uint) ([]RouteChatSummary, error) {
	var summaries []RouteChatSummary
	err := r.DB.Model(&models.RouteChat{}).
		Select("route_chats.route_id as route_id, routes.name as route_name, count(route_chat_messages.id) as message_count").
		Joins("JOIN routes ON routes.id = route_chats.route_id").
		Joins("LEFT JOIN route_chat_messages ON route_chat_messages.route_chat_id = route_chats.id").
		Where("routes.author_id = ?", authorID).
		Group("route_chats.route_id, routes.name").
		Scan(&summaries).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not build route chat summaries")
	}
	return summaries, nil
}

func reverseInPlace[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

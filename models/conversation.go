package models

// MaxMessageLength bounds chat message content, counted in characters.
const MaxMessageLength = 1000

// Conversation is a private two-party chat thread. Participants are stored
// as a canonically ordered pair (UserLowID < UserHighID) so a unique index
// enforces at most one conversation per unordered pair of users.
type Conversation struct {
	Model
	UserLowID  uint `json:"user_low_id" gorm:"not null;uniqueIndex:idx_conversation_pair"`
	UserHighID uint `json:"user_high_id" gorm:"not null;uniqueIndex:idx_conversation_pair"`
	UserLow    User `json:"-" gorm:"foreignKey:UserLowID"`
	UserHigh   User `json:"-" gorm:"foreignKey:UserHighID"`
}

// ConversationPair returns the canonical (low, high) ordering of two user IDs.
func ConversationPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether the user belongs to the conversation.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// OtherParticipantID returns the peer's ID, or 0 when the user is not a
// participant.
func (c *Conversation) OtherParticipantID(userID uint) uint {
	switch userID {
	case c.UserLowID:
		return c.UserHighID
	case c.UserHighID:
		return c.UserLowID
	}
	return 0
}

// PrivateMessage belongs to exactly one conversation. Immutable after
// creation except for the read flag.
type PrivateMessage struct {
	Model
	ConversationID uint         `json:"conversation_id" gorm:"not null;index"`
	Conversation   Conversation `json:"-" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	SenderID       uint         `json:"sender_id" gorm:"not null"`
	Sender         User         `json:"sender" gorm:"foreignKey:SenderID"`
	Content        string       `json:"content" gorm:"size:1000;not null"`
	IsRead         bool         `json:"is_read" gorm:"default:false"`
}

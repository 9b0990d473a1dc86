package models

// RouteChat is the chat thread attached one-to-one to a route. It is created
// in the same transaction as its route, so every route has exactly one chat.
type RouteChat struct {
	Model
	RouteID  uint  `json:"route_id" gorm:"not null;uniqueIndex"`
	Route    Route `json:"-" gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	IsActive bool  `json:"is_active" gorm:"default:true"`
}

// RouteChatMessage belongs to exactly one route chat.
type RouteChatMessage struct {
	Model
	RouteChatID uint      `json:"route_chat_id" gorm:"not null;index"`
	RouteChat   RouteChat `json:"-" gorm:"foreignKey:RouteChatID;constraint:OnDelete:CASCADE"`
	UserID      uint      `json:"user_id" gorm:"not null"`
	User        User      `json:"user" gorm:"foreignKey:UserID"`
	Message     string    `json:"message" gorm:"size:1000;not null"`
	IsRead      bool      `json:"is_read" gorm:"default:false"`
}

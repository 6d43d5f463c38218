package models

import (
	"time"
)

// Message types mirrored in the websocket frames.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

type Message struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	RoomID string `gorm:"size:36;index;not null" json:"room_id"`
	UserID string `gorm:"size:36;index;not null" json:"user_id"`

	Content     string `gorm:"type:text;not null" json:"content"`
	MessageType string `gorm:"size:20;default:'text'" json:"message_type"` // text, image, file, system
	FileURL     string `json:"file_url,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Relations
	User ChatUser `gorm:"foreignKey:UserID" json:"user"`
	Room ChatRoom `gorm:"foreignKey:RoomID" json:"-"`
}

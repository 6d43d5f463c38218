package models

import (
	"time"
)

type ChatUser struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	SessionID string `gorm:"uniqueIndex;size:255;not null" json:"-"`
	Username  string `gorm:"size:100;not null" json:"username"`
	Color     string `gorm:"size:7;default:'#007bff'" json:"color"` // hex color
	IsOnline  bool   `gorm:"default:false" json:"is_online"`

	// Nullable: cleared when the user leaves a room
	CurrentRoomID *string `gorm:"size:36;index" json:"current_room_id"`

	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	CurrentRoom *ChatRoom `gorm:"foreignKey:CurrentRoomID" json:"current_room,omitempty"`
}

package models

import (
	"time"
)

type ChatRoom struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"default:true" json:"is_public"`
	MaxUsers    int    `gorm:"default:100" json:"max_users"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Messages []Message `gorm:"foreignKey:RoomID" json:"messages,omitempty"`
}

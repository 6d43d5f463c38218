package models

import (
	"time"
)

// ActiveConnection is the source of truth for presence: one row per live
// socket, created on accept and deleted on disconnect. A user with several
// tabs open holds several rows under the same session.
type ActiveConnection struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      string `gorm:"size:36;index;not null" json:"user_id"`
	RoomID      string `gorm:"size:36;index;not null" json:"room_id"`
	ChannelName string `gorm:"size:255;not null" json:"channel_name"`

	ConnectedAt time.Time `gorm:"autoCreateTime" json:"connected_at"`

	// Relations
	User ChatUser `gorm:"foreignKey:UserID" json:"user"`
	Room ChatRoom `gorm:"foreignKey:RoomID" json:"-"`
}

package models

import (
	"time"
)

// Interaction kinds accepted by the record endpoint.
const (
	InteractionLike  = "like"
	InteractionView  = "view"
	InteractionClick = "click"
)

type Interaction struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index" json:"user_id"`
	ItemID uint   `gorm:"index;not null" json:"item_id"`
	Kind   string `gorm:"size:20;not null" json:"kind"` // like, view, click

	CreatedAt time.Time `json:"created_at"`
}

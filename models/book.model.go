package models

import (
	"time"
)

type Book struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Title   string    `gorm:"size:100" json:"title"`
	Author  string    `gorm:"size:100" json:"author"`
	Publish time.Time `gorm:"not null" json:"publish"`
}

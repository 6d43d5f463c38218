package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Login information
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"unique;not null;size:255" json:"email"`
	Phone    string `gorm:"unique;size:20" json:"phone"`
	Password string `gorm:"not null" json:"-"`

	// Role & status
	Role       string `gorm:"default:'user';size:20" json:"role"` // user, provider
	IsActive   bool   `gorm:"default:true" json:"is_active"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`

	// Password reset
	PasswordResetOTP          string     `gorm:"size:6" json:"-"`
	PasswordResetOTPCreatedAt *time.Time `json:"-"`
	PasswordResetToken        string     `gorm:"size:40" json:"-"`

	// System timestamps
	CreatedAt time.Time      `json:"date_joined"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Profile UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

type UserProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex" json:"user_id"`

	Location       string `gorm:"size:255" json:"location"`
	ProfilePicture string `json:"profile_picture"`
	Bio            string `gorm:"type:text" json:"bio"`
}

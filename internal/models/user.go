package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an authenticated account. The access-control layer only
// relies on the id and the verified email; everything else is profile.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Email         string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string         `gorm:"size:255" json:"-"`
	Name          string         `gorm:"size:100" json:"name"`
	Avatar        string         `gorm:"size:500" json:"avatar"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	IsAdmin       bool           `gorm:"default:false" json:"is_admin"` // platform operator, not an org role
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	LastLogin     *time.Time     `json:"last_login"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

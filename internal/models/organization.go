package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization is the top level of the tenancy hierarchy. It owns its
// workspaces and its membership roster.
type Organization struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	SeatLimit int            `gorm:"default:0" json:"seat_limit"` // 0 = unlimited
	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Organization) TableName() string { return "organizations" }

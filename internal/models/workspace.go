package models

import (
	"time"

	"gorm.io/gorm"
)

// Workspace visibility values.
const (
	VisibilityOrg     = "org"     // every org member gets implicit viewer access
	VisibilityPrivate = "private" // explicit membership only
)

// Workspace groups documents inside one organization. OrgID never
// changes after creation. Archival is a soft delete on archived_at;
// gorm's DeletedAt mapping gives every query the
// "WHERE archived_at IS NULL" predicate in one place.
type Workspace struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrgID       uint           `gorm:"index;not null" json:"org_id"`
	Org         *Organization  `gorm:"foreignKey:OrgID" json:"org,omitempty"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"size:1000" json:"description"`
	Visibility  string         `gorm:"size:20;not null;default:org" json:"visibility"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ArchivedAt  gorm.DeletedAt `gorm:"column:archived_at;index" json:"-"`
}

func (Workspace) TableName() string { return "workspaces" }

// ValidVisibility reports whether s is a known visibility value.
func ValidVisibility(s string) bool {
	return s == VisibilityOrg || s == VisibilityPrivate
}

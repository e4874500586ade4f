package models

import (
	"time"
)

// Organization roles. Any role, however weak, grants implicit viewer
// access to org-visible workspaces.
const (
	OrgRoleAdmin  = "admin"
	OrgRoleMember = "member"
	OrgRoleViewer = "viewer"
)

// OrgMembership links a user to an organization with a role. Rows are
// removed outright, never soft-deleted: the (org_id, user_id) unique
// index doubles as the backstop against concurrent double-joins.
type OrgMembership struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	OrgID     uint          `gorm:"uniqueIndex:idx_org_user;not null" json:"org_id"`
	Org       *Organization `gorm:"foreignKey:OrgID" json:"org,omitempty"`
	UserID    uint          `gorm:"uniqueIndex:idx_org_user;not null" json:"user_id"`
	User      *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string        `gorm:"size:50;not null;default:member" json:"role"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (OrgMembership) TableName() string { return "org_memberships" }

// ValidOrgRole reports whether s is one of the closed org role set.
func ValidOrgRole(s string) bool {
	return s == OrgRoleAdmin || s == OrgRoleMember || s == OrgRoleViewer
}

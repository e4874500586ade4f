package models

import (
	"time"
)

// Workspace roles, strongest first. Deliberately decoupled from org
// roles: an org admin gets no implicit workspace owner grant.
const (
	WorkspaceRoleOwner     = "owner"
	WorkspaceRoleEditor    = "editor"
	WorkspaceRoleCommenter = "commenter"
	WorkspaceRoleViewer    = "viewer"
)

// WorkspaceMembership is an explicit per-workspace grant. AddedBy is
// nil only for the creator's initial owner row.
type WorkspaceMembership struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID uint       `gorm:"uniqueIndex:idx_workspace_user;not null" json:"workspace_id"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	UserID      uint       `gorm:"uniqueIndex:idx_workspace_user;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        string     `gorm:"size:50;not null;default:viewer" json:"role"`
	AddedBy     *uint      `json:"added_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (WorkspaceMembership) TableName() string { return "workspace_memberships" }

// ValidWorkspaceRole reports whether s is one of the closed workspace role set.
func ValidWorkspaceRole(s string) bool {
	switch s {
	case WorkspaceRoleOwner, WorkspaceRoleEditor, WorkspaceRoleCommenter, WorkspaceRoleViewer:
		return true
	}
	return false
}

// workspaceRoleRank orders roles for "at least" comparisons. Call sites
// must never inline their own role checks; they go through this table.
var workspaceRoleRank = map[string]int{
	WorkspaceRoleViewer:    1,
	WorkspaceRoleCommenter: 2,
	WorkspaceRoleEditor:    3,
	WorkspaceRoleOwner:     4,
}

// WorkspaceRoleAtLeast reports whether role grants at least the
// privileges of min.
func WorkspaceRoleAtLeast(role, min string) bool {
	return workspaceRoleRank[role] >= workspaceRoleRank[min]
}

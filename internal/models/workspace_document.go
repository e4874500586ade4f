package models

import (
	"time"
)

// WorkspaceDocument associates an externally owned document with a
// workspace. The document store holds the content; this table is only
// the sharing ledger, keyed by the external document id.
type WorkspaceDocument struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID uint       `gorm:"uniqueIndex:idx_workspace_doc;not null" json:"workspace_id"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	DocumentID  string     `gorm:"uniqueIndex:idx_workspace_doc;size:100;not null" json:"document_id"`
	AddedBy     uint       `json:"added_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (WorkspaceDocument) TableName() string { return "workspace_documents" }

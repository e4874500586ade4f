package services

import (
	"errors"
	"strings"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/response"
	"gorm.io/gorm"
)

// DocumentService maintains the workspace-document sharing ledger. The
// documents themselves live in the external document store; only the
// association is kept here.
type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

type ShareDocumentRequest struct {
	DocumentID string `json:"document_id" binding:"required,max=100"`
}

// List returns the documents shared to a workspace, newest first.
// Access is gated by the middleware, not here.
func (s *DocumentService) List(workspaceID uint) ([]models.WorkspaceDocument, error) {
	var links []models.WorkspaceDocument
	if err := s.db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Share links a document to a workspace. A duplicate pair surfaces as
// ALREADY_SHARED whether caught here or by the unique index on a race.
func (s *DocumentService) Share(workspaceID uint, req *ShareDocumentRequest, byUserID uint) (*models.WorkspaceDocument, error) {
	docID := strings.TrimSpace(req.DocumentID)
	if docID == "" {
		return nil, response.NewValidation("document_id is required")
	}

	link := models.WorkspaceDocument{
		WorkspaceID: workspaceID,
		DocumentID:  docID,
		AddedBy:     byUserID,
	}
	if err := s.db.Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewAlreadyShared()
		}
		return nil, err
	}
	return &link, nil
}

// Unshare removes a document link; NOT_FOUND if the pair doesn't exist.
func (s *DocumentService) Unshare(workspaceID uint, documentID string) error {
	result := s.db.Where("workspace_id = ? AND document_id = ?", workspaceID, documentID).
		Delete(&models.WorkspaceDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("document is not shared to this workspace")
	}
	return nil
}

package services

import (
	"errors"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/response"
	"gorm.io/gorm"
)

type WorkspaceMemberService struct {
	db *gorm.DB
}

func NewWorkspaceMemberService(db *gorm.DB) *WorkspaceMemberService {
	return &WorkspaceMemberService{db: db}
}

type AddWorkspaceMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

type UpdateWorkspaceMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

// List returns the workspace roster with user profiles preloaded.
func (s *WorkspaceMemberService) List(workspaceID uint) ([]models.WorkspaceMembership, error) {
	var members []models.WorkspaceMembership
	if err := s.db.Where("workspace_id = ?", workspaceID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Add grants an explicit workspace role. The target must already be a
// member of the owning org; cross-org grants are refused.
func (s *WorkspaceMemberService) Add(ws *models.Workspace, req *AddWorkspaceMemberRequest, addedBy uint) (*models.WorkspaceMembership, error) {
	if !models.ValidWorkspaceRole(req.Role) {
		return nil, response.NewValidation("invalid workspace role: " + req.Role)
	}

	var orgMember models.OrgMembership
	if err := s.db.Where("org_id = ? AND user_id = ?", ws.OrgID, req.UserID).
		First(&orgMember).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewValidation("user is not a member of the owning organization")
		}
		return nil, err
	}

	member := models.WorkspaceMembership{
		WorkspaceID: ws.ID,
		UserID:      req.UserID,
		Role:        req.Role,
		AddedBy:     &addedBy,
	}
	if err := s.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewAlreadyMember()
		}
		return nil, err
	}

	s.db.Preload("User").First(&member, member.ID)
	return &member, nil
}

// UpdateRole changes a member's role. Demoting the last owner is
// refused; the owner count is checked under a locking read so two
// concurrent demotions cannot both pass.
func (s *WorkspaceMemberService) UpdateRole(workspaceID, targetUserID uint, role string) (*models.WorkspaceMembership, error) {
	if !models.ValidWorkspaceRole(role) {
		return nil, response.NewValidation("invalid workspace role: " + role)
	}

	var member models.WorkspaceMembership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("workspace_id = ? AND user_id = ?", workspaceID, targetUserID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("member not found")
			}
			return err
		}

		if member.Role == models.WorkspaceRoleOwner && role != models.WorkspaceRoleOwner {
			if err := ensureNotLastOwner(tx, workspaceID, targetUserID); err != nil {
				return err
			}
		}

		member.Role = role
		return tx.Save(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("User").First(&member, member.ID)
	return &member, nil
}

// Remove deletes a membership row. Removing the last owner is refused,
// including self-removal.
func (s *WorkspaceMemberService) Remove(workspaceID, targetUserID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var member models.WorkspaceMembership
		if err := lockForUpdate(tx).
			Where("workspace_id = ? AND user_id = ?", workspaceID, targetUserID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("member not found")
			}
			return err
		}

		if member.Role == models.WorkspaceRoleOwner {
			if err := ensureNotLastOwner(tx, workspaceID, targetUserID); err != nil {
				return err
			}
		}

		return tx.Delete(&member).Error
	})
}

// ensureNotLastOwner fails with LAST_OWNER unless another owner row
// exists. The other owners are read under a lock so a concurrent
// removal of the second owner blocks until this transaction commits.
func ensureNotLastOwner(tx *gorm.DB, workspaceID, excludeUserID uint) error {
	var others []models.WorkspaceMembership
	if err := lockForUpdate(tx).
		Where("workspace_id = ? AND role = ? AND user_id <> ?",
			workspaceID, models.WorkspaceRoleOwner, excludeUserID).
		Find(&others).Error; err != nil {
		return err
	}
	if len(others) == 0 {
		return response.NewLastOwner()
	}
	return nil
}

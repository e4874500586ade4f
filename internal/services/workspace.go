package services

import (
	"errors"
	"strings"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/response"
	"gorm.io/gorm"
)

type WorkspaceService struct {
	db     *gorm.DB
	access *AccessService
}

func NewWorkspaceService(db *gorm.DB) *WorkspaceService {
	return &WorkspaceService{db: db, access: NewAccessService(db)}
}

type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=1000"`
	Visibility  string `json:"visibility" binding:"required"`
	IsDefault   bool   `json:"is_default"`
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Visibility  *string `json:"visibility"`
	IsDefault   *bool   `json:"is_default"`
}

// WorkspaceDetail is a workspace annotated with the caller's effective
// role and aggregate counts.
type WorkspaceDetail struct {
	models.Workspace
	EffectiveRole string `json:"effective_role"`
	MemberCount   int64  `json:"member_count"`
	DocumentCount int64  `json:"document_count"`
}

// Create inserts a workspace with the creator as initial owner. When
// is_default is set, any previous default in the org is unset inside
// the same transaction; the partial unique index on (org_id) backstops
// the race between two concurrent default creates.
func (s *WorkspaceService) Create(orgID uint, req *CreateWorkspaceRequest, creatorID uint) (*models.Workspace, error) {
	if !models.ValidVisibility(req.Visibility) {
		return nil, response.NewValidation("invalid visibility: " + req.Visibility)
	}

	ws := models.Workspace{
		OrgID:       orgID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Visibility:  req.Visibility,
		IsDefault:   req.IsDefault,
		CreatedBy:   creatorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := unsetOrgDefault(tx, orgID, 0); err != nil {
				return err
			}
		}
		if err := tx.Create(&ws).Error; err != nil {
			return err
		}
		// Initial owner row; AddedBy stays nil for the creator.
		owner := models.WorkspaceMembership{
			WorkspaceID: ws.ID,
			UserID:      creatorID,
			Role:        models.WorkspaceRoleOwner,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// Update applies a partial patch. Setting is_default runs the same
// unset-then-set swap as Create, in one transaction.
func (s *WorkspaceService) Update(workspaceID uint, req *UpdateWorkspaceRequest) (*models.Workspace, error) {
	if req.Visibility != nil && !models.ValidVisibility(*req.Visibility) {
		return nil, response.NewValidation("invalid visibility: " + *req.Visibility)
	}

	var ws models.Workspace
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&ws, workspaceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("workspace not found")
			}
			return err
		}

		updates := make(map[string]interface{})
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Visibility != nil {
			updates["visibility"] = *req.Visibility
		}
		if req.IsDefault != nil {
			if *req.IsDefault && !ws.IsDefault {
				if err := unsetOrgDefault(tx, ws.OrgID, ws.ID); err != nil {
					return err
				}
			}
			updates["is_default"] = *req.IsDefault
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&ws).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// Archive soft-deletes a workspace. Archiving an already archived or
// unknown workspace fails with NOT_FOUND.
func (s *WorkspaceService) Archive(workspaceID uint) error {
	result := s.db.Delete(&models.Workspace{}, workspaceID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("workspace not found")
	}
	return nil
}

// Get returns a workspace with the caller's effective role and counts
// computed by aggregate queries.
func (s *WorkspaceService) Get(workspaceID, callerID uint) (*WorkspaceDetail, error) {
	ws, err := s.access.GetWorkspace(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("workspace not found")
		}
		return nil, err
	}

	role, ok, err := s.access.EffectiveRole(ws, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, response.NewWorkspaceDenied()
	}

	detail := WorkspaceDetail{Workspace: *ws, EffectiveRole: role}
	if err := s.db.Model(&models.WorkspaceMembership{}).
		Where("workspace_id = ?", workspaceID).
		Count(&detail.MemberCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.WorkspaceDocument{}).
		Where("workspace_id = ?", workspaceID).
		Count(&detail.DocumentCount).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListForOrg returns every live workspace the caller can see: all
// org-visible ones plus private ones where the caller holds an explicit
// membership. Default workspace first, then creation order.
func (s *WorkspaceService) ListForOrg(orgID, callerID uint) ([]WorkspaceDetail, error) {
	orgMember, err := s.access.GetOrgMembership(orgID, callerID)
	if err != nil {
		return nil, err
	}

	var workspaces []models.Workspace
	if err := s.db.
		Where("org_id = ?", orgID).
		Where("visibility = ? OR id IN (?)",
			models.VisibilityOrg,
			s.db.Model(&models.WorkspaceMembership{}).
				Select("workspace_id").
				Where("user_id = ?", callerID),
		).
		Order("is_default DESC, created_at ASC").
		Find(&workspaces).Error; err != nil {
		return nil, err
	}

	if len(workspaces) == 0 {
		return []WorkspaceDetail{}, nil
	}

	// One query for the caller's explicit rows across all results.
	wsIDs := make([]uint, 0, len(workspaces))
	for _, ws := range workspaces {
		wsIDs = append(wsIDs, ws.ID)
	}
	var explicitRows []models.WorkspaceMembership
	if err := s.db.
		Where("workspace_id IN ? AND user_id = ?", wsIDs, callerID).
		Find(&explicitRows).Error; err != nil {
		return nil, err
	}
	explicitByWs := make(map[uint]*models.WorkspaceMembership, len(explicitRows))
	for i := range explicitRows {
		explicitByWs[explicitRows[i].WorkspaceID] = &explicitRows[i]
	}

	details := make([]WorkspaceDetail, 0, len(workspaces))
	for i := range workspaces {
		ws := workspaces[i]
		role, ok := ResolveWorkspaceRole(&ws, explicitByWs[ws.ID], orgMember)
		if !ok {
			continue
		}
		details = append(details, WorkspaceDetail{Workspace: ws, EffectiveRole: role})
	}
	return details, nil
}

// unsetOrgDefault clears is_default on every other live workspace of
// the org. The UPDATE takes its own row locks; must run inside the
// caller's transaction so unset and set commit together.
func unsetOrgDefault(tx *gorm.DB, orgID, excludeID uint) error {
	q := tx.Model(&models.Workspace{}).
		Where("org_id = ? AND is_default = ?", orgID, true)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return q.Update("is_default", false).Error
}

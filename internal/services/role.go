package services

import (
	"errors"

	"github.com/claridoc/backend/internal/models"
	"gorm.io/gorm"
)

// ResolveWorkspaceRole computes a caller's effective role for a
// workspace from an optional explicit membership and an optional org
// membership. It is the only place effective roles are derived; the
// read paths and the access middleware both go through it, so the two
// can never disagree.
//
// Rules, in order:
//  1. An explicit workspace membership always wins, even a bare viewer
//     row on a private workspace.
//  2. An org-visible workspace grants implicit viewer to any org member,
//     whatever their org role. Org admins get nothing extra here.
//  3. Otherwise no access.
func ResolveWorkspaceRole(ws *models.Workspace, explicit *models.WorkspaceMembership, orgMember *models.OrgMembership) (string, bool) {
	if explicit != nil {
		return explicit.Role, true
	}
	if ws.Visibility == models.VisibilityOrg && orgMember != nil {
		return models.WorkspaceRoleViewer, true
	}
	return "", false
}

// AccessService loads the rows ResolveWorkspaceRole needs. It is shared
// by WorkspaceService and the access middleware.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// GetWorkspace fetches a live (non-archived) workspace.
func (s *AccessService) GetWorkspace(workspaceID uint) (*models.Workspace, error) {
	var ws models.Workspace
	if err := s.db.First(&ws, workspaceID).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// GetOrgMembership returns the caller's org membership row, or nil if
// none exists. This is the authorization primitive for org routes.
func (s *AccessService) GetOrgMembership(orgID, userID uint) (*models.OrgMembership, error) {
	var m models.OrgMembership
	err := s.db.Where("org_id = ? AND user_id = ?", orgID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetWorkspaceMembership returns the caller's explicit workspace
// membership row, or nil if none exists.
func (s *AccessService) GetWorkspaceMembership(workspaceID, userID uint) (*models.WorkspaceMembership, error) {
	var m models.WorkspaceMembership
	err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// EffectiveRole resolves the caller's role for a workspace, loading the
// explicit and org membership rows and delegating to ResolveWorkspaceRole.
func (s *AccessService) EffectiveRole(ws *models.Workspace, userID uint) (string, bool, error) {
	explicit, err := s.GetWorkspaceMembership(ws.ID, userID)
	if err != nil {
		return "", false, err
	}
	var orgMember *models.OrgMembership
	if explicit == nil {
		orgMember, err = s.GetOrgMembership(ws.OrgID, userID)
		if err != nil {
			return "", false, err
		}
	}
	role, ok := ResolveWorkspaceRole(ws, explicit, orgMember)
	return role, ok, nil
}

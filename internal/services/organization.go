package services

import (
	"errors"
	"strings"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/response"
	"gorm.io/gorm"
)

type OrganizationService struct {
	db     *gorm.DB
	access *AccessService
}

func NewOrganizationService(db *gorm.DB) *OrganizationService {
	return &OrganizationService{db: db, access: NewAccessService(db)}
}

type CreateOrgRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Slug string `json:"slug" binding:"required,max=100"`
}

// OrgSummary is an organization annotated with the caller's role and
// the current member count.
type OrgSummary struct {
	models.Organization
	Role        string `json:"role"`
	MemberCount int64  `json:"member_count"`
}

// Create inserts an organization and enrolls the creator as admin, in
// one transaction. A duplicate slug surfaces as SLUG_TAKEN whether it
// is caught by the pre-check or by the unique index under a race.
func (s *OrganizationService) Create(req *CreateOrgRequest, creatorID uint) (*models.Organization, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	org := models.Organization{
		Name:      strings.TrimSpace(req.Name),
		Slug:      slug,
		CreatedBy: creatorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return response.NewSlugTaken(slug)
			}
			return err
		}
		membership := models.OrgMembership{
			OrgID:  org.ID,
			UserID: creatorID,
			Role:   models.OrgRoleAdmin,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetByID returns a non-deleted organization.
func (s *OrganizationService) GetByID(orgID uint) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("organization not found")
		}
		return nil, err
	}
	return &org, nil
}

// GetMembership exposes the authorization primitive.
func (s *OrganizationService) GetMembership(orgID, userID uint) (*models.OrgMembership, error) {
	return s.access.GetOrgMembership(orgID, userID)
}

// ListForUser returns every non-deleted org the user belongs to, each
// with the caller's role and a member count from one aggregate query.
func (s *OrganizationService) ListForUser(userID uint) ([]OrgSummary, error) {
	var memberships []models.OrgMembership
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []OrgSummary{}, nil
	}

	orgIDs := make([]uint, 0, len(memberships))
	roleByOrg := make(map[uint]string, len(memberships))
	for _, m := range memberships {
		orgIDs = append(orgIDs, m.OrgID)
		roleByOrg[m.OrgID] = m.Role
	}

	var orgs []models.Organization
	if err := s.db.Where("id IN ?", orgIDs).Order("created_at ASC").Find(&orgs).Error; err != nil {
		return nil, err
	}

	type orgCount struct {
		OrgID uint
		Count int64
	}
	var counts []orgCount
	if err := s.db.Model(&models.OrgMembership{}).
		Select("org_id, COUNT(*) AS count").
		Where("org_id IN ?", orgIDs).
		Group("org_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countByOrg := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByOrg[c.OrgID] = c.Count
	}

	summaries := make([]OrgSummary, 0, len(orgs))
	for _, org := range orgs {
		summaries = append(summaries, OrgSummary{
			Organization: org,
			Role:         roleByOrg[org.ID],
			MemberCount:  countByOrg[org.ID],
		})
	}
	return summaries, nil
}

// ListMembers returns the roster with user profiles preloaded.
func (s *OrganizationService) ListMembers(orgID uint) ([]models.OrgMembership, error) {
	var members []models.OrgMembership
	if err := s.db.Where("org_id = ?", orgID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

type UpdateOrgMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateMemberRole changes an org member's role. Demoting the last
// admin is refused so the org never becomes unmanageable.
func (s *OrganizationService) UpdateMemberRole(orgID, targetUserID uint, role string) (*models.OrgMembership, error) {
	if !models.ValidOrgRole(role) {
		return nil, response.NewValidation("invalid org role: " + role)
	}

	var member models.OrgMembership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("org_id = ? AND user_id = ?", orgID, targetUserID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("member not found")
			}
			return err
		}

		if member.Role == models.OrgRoleAdmin && role != models.OrgRoleAdmin {
			if err := ensureNotLastOrgAdmin(tx, orgID, targetUserID); err != nil {
				return err
			}
		}

		member.Role = role
		return tx.Save(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember removes a user from the org roster. The last admin
// cannot be removed.
func (s *OrganizationService) RemoveMember(orgID, targetUserID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var member models.OrgMembership
		if err := lockForUpdate(tx).
			Where("org_id = ? AND user_id = ?", orgID, targetUserID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("member not found")
			}
			return err
		}

		if member.Role == models.OrgRoleAdmin {
			if err := ensureNotLastOrgAdmin(tx, orgID, targetUserID); err != nil {
				return err
			}
		}

		return tx.Delete(&member).Error
	})
}

// ensureNotLastOrgAdmin fails if no other admin would remain. Runs
// inside the caller's transaction with the target row already locked.
func ensureNotLastOrgAdmin(tx *gorm.DB, orgID, excludeUserID uint) error {
	var otherAdmins int64
	if err := tx.Model(&models.OrgMembership{}).
		Where("org_id = ? AND role = ? AND user_id <> ?", orgID, models.OrgRoleAdmin, excludeUserID).
		Count(&otherAdmins).Error; err != nil {
		return err
	}
	if otherAdmins == 0 {
		return response.NewValidation("organization must keep at least one admin")
	}
	return nil
}

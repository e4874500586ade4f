package services

import (
	"errors"
	"strings"
	"time"

	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/internal/utils"
	"github.com/claridoc/backend/pkg/logger"
	"github.com/claridoc/backend/pkg/response"
	"gorm.io/gorm"
)

// InvitationTTL is the fixed lifetime of an invitation. Expiry is
// evaluated against expires_at on every read; there is no background
// sweep. A stale pending row is retired only when a new invitation for
// the same address needs its slot in the pending unique index.
const InvitationTTL = 7 * 24 * time.Hour

type InvitationService struct {
	db     *gorm.DB
	cfgSvc *SystemConfigService
	appCfg *config.AppConfig
	queue  TaskQueue
}

func NewInvitationService(db *gorm.DB, appCfg *config.AppConfig, queue TaskQueue) *InvitationService {
	return &InvitationService{
		db:     db,
		cfgSvc: NewSystemConfigService(db),
		appCfg: appCfg,
		queue:  queue,
	}
}

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// CreateInvitationResult carries the plaintext token. This is the only
// time it exists outside the recipient's mailbox.
type CreateInvitationResult struct {
	Invitation *models.Invitation `json:"invitation"`
	Token      string             `json:"token"`
	// EmailWarning is set when the invitation row was created but the
	// notification mail could not be dispatched.
	EmailWarning string `json:"-"`
}

// InvitationView is the public projection returned for a token lookup.
// It exposes only what the landing page needs.
type InvitationView struct {
	OrgName   string    `json:"org_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AcceptResult reports the granted membership.
type AcceptResult struct {
	OrgID uint   `json:"org_id"`
	Role  string `json:"role"`
}

// NormalizeEmail lowercases and trims an address. Applied to every
// email before storage or comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create issues an invitation for an org. Caller authorization (org
// admin) is enforced by the middleware. The duplicate-pending check and
// the insert run in one transaction; the partial unique index on
// (org_id, email) WHERE status='pending' closes the remaining race.
func (s *InvitationService) Create(org *models.Organization, req *CreateInvitationRequest, byUserID uint) (*CreateInvitationResult, error) {
	if !models.ValidOrgRole(req.Role) {
		return nil, response.NewValidation("invalid org role: " + req.Role)
	}
	email := NormalizeEmail(req.Email)
	now := time.Now()

	token, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, err
	}

	inv := models.Invitation{
		OrgID:     org.ID,
		Email:     email,
		Role:      req.Role,
		TokenHash: utils.HashToken(token),
		Status:    models.InvitationPending,
		ExpiresAt: now.Add(InvitationTTL),
		CreatedBy: byUserID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The invited address may already belong to a member.
		var existingUser models.User
		userErr := tx.Where("email = ?", email).First(&existingUser).Error
		if userErr == nil {
			var count int64
			if err := tx.Model(&models.OrgMembership{}).
				Where("org_id = ? AND user_id = ?", org.ID, existingUser.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return response.NewAlreadyMember()
			}
		} else if !errors.Is(userErr, gorm.ErrRecordNotFound) {
			return userErr
		}

		// A stale pending row for this address still occupies the
		// partial unique index slot; retire it so the insert below can
		// claim it. The row stays in storage as audit trail.
		if err := tx.Model(&models.Invitation{}).
			Where("org_id = ? AND email = ? AND status = ? AND expires_at <= ?",
				org.ID, email, models.InvitationPending, now).
			Update("status", models.InvitationExpired).Error; err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.Invitation{}).
			Where("org_id = ? AND email = ? AND status = ? AND expires_at > ?",
				org.ID, email, models.InvitationPending, now).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return response.NewInvitationExists(email)
		}

		if err := s.checkSeatLimit(tx, org, now); err != nil {
			return err
		}

		if err := tx.Create(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return response.NewInvitationExists(email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CreateInvitationResult{Invitation: &inv, Token: token}

	// Fire-and-forget: a failed mail never rolls back the invitation.
	if err := s.queue.Enqueue(&EmailTask{
		To:         email,
		OrgName:    org.Name,
		Role:       req.Role,
		InviteLink: s.appCfg.BaseURL + "/invitations/" + token,
		ExpiresAt:  inv.ExpiresAt,
	}); err != nil {
		logger.Warn().Err(err).Uint("org_id", org.ID).Msg("invitation email dispatch failed")
		result.EmailWarning = "invitation created but the notification email could not be sent"
	}

	return result, nil
}

// checkSeatLimit fails when active members plus pending invitations
// meet the org's seat cap. 0 means unlimited.
func (s *InvitationService) checkSeatLimit(tx *gorm.DB, org *models.Organization, now time.Time) error {
	limit := org.SeatLimit
	if limit == 0 {
		limit = s.cfgSvc.GetInt("org_default_seat_limit", s.appCfg.DefaultSeatLimit)
	}
	if limit <= 0 {
		return nil
	}

	var members int64
	if err := tx.Model(&models.OrgMembership{}).
		Where("org_id = ?", org.ID).
		Count(&members).Error; err != nil {
		return err
	}
	var pending int64
	if err := tx.Model(&models.Invitation{}).
		Where("org_id = ? AND status = ? AND expires_at > ?",
			org.ID, models.InvitationPending, now).
		Count(&pending).Error; err != nil {
		return err
	}

	if members+pending >= int64(limit) {
		return response.NewSeatLimitReached()
	}
	return nil
}

// GetByToken resolves a token to its invitation view. Unknown, revoked
// and expired tokens are indistinguishable: all INVITATION_NOT_FOUND.
func (s *InvitationService) GetByToken(token string) (*InvitationView, error) {
	var inv models.Invitation
	err := s.db.Preload("Org").
		Where("token_hash = ?", utils.HashToken(token)).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewInvitationNotFound()
	}
	if err != nil {
		return nil, err
	}
	if !inv.Usable(time.Now()) {
		return nil, response.NewInvitationNotFound()
	}

	view := &InvitationView{
		Email:     inv.Email,
		Role:      inv.Role,
		ExpiresAt: inv.ExpiresAt,
	}
	if inv.Org != nil {
		view.OrgName = inv.Org.Name
	}
	return view, nil
}

// Accept consumes an invitation: one transaction covering the digest
// lookup, the email match, the membership insert and the status flip.
// The (org_id, user_id) unique index turns a double-accept race into
// ALREADY_MEMBER instead of a duplicate row.
func (s *InvitationService) Accept(token string, callerID uint, callerVerifiedEmail string) (*AcceptResult, error) {
	callerEmail := NormalizeEmail(callerVerifiedEmail)
	now := time.Now()

	var result AcceptResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invitation
		if err := lockForUpdate(tx).
			Where("token_hash = ?", utils.HashToken(token)).
			First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewInvitationNotFound()
			}
			return err
		}
		if !inv.Usable(now) {
			return response.NewInvitationNotFound()
		}

		if callerEmail == "" || callerEmail != inv.Email {
			return response.NewEmailMismatch()
		}

		var existing int64
		if err := tx.Model(&models.OrgMembership{}).
			Where("org_id = ? AND user_id = ?", inv.OrgID, callerID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return response.NewAlreadyMember()
		}

		membership := models.OrgMembership{
			OrgID:  inv.OrgID,
			UserID: callerID,
			Role:   inv.Role,
		}
		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return response.NewAlreadyMember()
			}
			return err
		}

		inv.Status = models.InvitationAccepted
		inv.AcceptedAt = &now
		inv.AcceptedBy = &callerID
		if err := tx.Save(&inv).Error; err != nil {
			return err
		}

		result = AcceptResult{OrgID: inv.OrgID, Role: inv.Role}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Revoke terminates a pending invitation. Accepted or already revoked
// invitations answer NOT_FOUND.
func (s *InvitationService) Revoke(orgID, invitationID uint) error {
	result := s.db.Model(&models.Invitation{}).
		Where("id = ? AND org_id = ? AND status = ?", invitationID, orgID, models.InvitationPending).
		Update("status", models.InvitationRevoked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("invitation not found")
	}
	return nil
}

// List returns pending, non-expired invitations for an org. Expired
// rows stay in storage as audit trail but are filtered here.
func (s *InvitationService) List(orgID uint) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := s.db.
		Where("org_id = ? AND status = ? AND expires_at > ?",
			orgID, models.InvitationPending, time.Now()).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

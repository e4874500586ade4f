package handlers

import (
	"strconv"

	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/internal/middleware"
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
	orgService        *services.OrganizationService
	enabled           bool
}

func NewInvitationHandler(db *gorm.DB, cfg *config.Config, queue services.TaskQueue) *InvitationHandler {
	return &InvitationHandler{
		invitationService: services.NewInvitationService(db, &cfg.App, queue),
		orgService:        services.NewOrganizationService(db),
		enabled:           cfg.Features.Invitations,
	}
}

// featureEnabled guards every invitation route behind the staged
// rollout flag.
func (h *InvitationHandler) featureEnabled(c *gin.Context) bool {
	if !h.enabled {
		response.Error(c, response.NewFeatureUnavailable("invitations"))
		return false
	}
	return true
}

// Create issues an invitation and mails the token link
// POST /api/orgs/:orgId/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	if !h.featureEnabled(c) {
		return
	}

	var req services.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	org, err := h.orgService.GetByID(middleware.GetOrgID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.invitationService.Create(org, &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.EmailWarning != "" {
		response.CreatedWithWarning(c, result, result.EmailWarning)
		return
	}
	response.Created(c, result)
}

// List returns the org's pending, non-expired invitations
// GET /api/orgs/:orgId/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	if !h.featureEnabled(c) {
		return
	}

	invitations, err := h.invitationService.List(middleware.GetOrgID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invitations)
}

// Revoke cancels a pending invitation
// DELETE /api/orgs/:orgId/invitations/:invitationId
func (h *InvitationHandler) Revoke(c *gin.Context) {
	if !h.featureEnabled(c) {
		return
	}

	invitationID, err := strconv.ParseUint(c.Param("invitationId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}

	if err := h.invitationService.Revoke(middleware.GetOrgID(c), uint(invitationID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// GetByToken shows an invitation to its recipient before they sign in.
// Unknown, revoked and expired tokens are indistinguishable.
// GET /api/invitations/:token
func (h *InvitationHandler) GetByToken(c *gin.Context) {
	if !h.featureEnabled(c) {
		return
	}

	view, err := h.invitationService.GetByToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

// Accept redeems an invitation for the authenticated caller
// POST /api/invitations/:token/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	if !h.featureEnabled(c) {
		return
	}

	if !middleware.GetEmailVerified(c) {
		response.Error(c, response.NewEmailMismatch())
		return
	}

	result, err := h.invitationService.Accept(c.Param("token"), middleware.GetUserID(c), middleware.GetUserEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

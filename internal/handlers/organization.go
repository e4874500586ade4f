package handlers

import (
	"strconv"

	"github.com/claridoc/backend/internal/middleware"
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(db *gorm.DB) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: services.NewOrganizationService(db),
	}
}

// Create creates an organization with the caller as admin
// POST /api/orgs
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req services.CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	org, err := h.orgService.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, org)
}

// List returns the caller's organizations with role and member count
// GET /api/orgs
func (h *OrganizationHandler) List(c *gin.Context) {
	orgs, err := h.orgService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, orgs)
}

// Get returns one organization the caller belongs to
// GET /api/orgs/:orgId
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.orgService.GetByID(middleware.GetOrgID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	members, err := h.orgService.ListMembers(org.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"org":          org,
		"role":         middleware.GetOrgMembership(c).Role,
		"member_count": len(members),
	})
}

// ListMembers returns the organization roster
// GET /api/orgs/:orgId/members
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	members, err := h.orgService.ListMembers(middleware.GetOrgID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

// UpdateMember changes an org member's role
// PATCH /api/orgs/:orgId/members/:userId
func (h *OrganizationHandler) UpdateMember(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req services.UpdateOrgMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.orgService.UpdateMemberRole(middleware.GetOrgID(c), uint(targetID), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// RemoveMember removes a user from the roster
// DELETE /api/orgs/:orgId/members/:userId
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.orgService.RemoveMember(middleware.GetOrgID(c), uint(targetID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

package handlers

import (
	"strconv"

	"github.com/claridoc/backend/internal/middleware"
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WorkspaceMemberHandler struct {
	memberService *services.WorkspaceMemberService
}

func NewWorkspaceMemberHandler(db *gorm.DB) *WorkspaceMemberHandler {
	return &WorkspaceMemberHandler{
		memberService: services.NewWorkspaceMemberService(db),
	}
}

// List returns the workspace member roster
// GET /api/workspaces/:id/members
func (h *WorkspaceMemberHandler) List(c *gin.Context) {
	members, err := h.memberService.List(middleware.GetWorkspace(c).ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

// Add grants a user an explicit workspace role
// POST /api/workspaces/:id/members
func (h *WorkspaceMemberHandler) Add(c *gin.Context) {
	var req services.AddWorkspaceMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Add(middleware.GetWorkspace(c), &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}

// UpdateRole changes a member's workspace role
// PATCH /api/workspaces/:id/members/:userId
func (h *WorkspaceMemberHandler) UpdateRole(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req services.UpdateWorkspaceMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.UpdateRole(middleware.GetWorkspace(c).ID, uint(targetID), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// Remove revokes a member's explicit workspace role
// DELETE /api/workspaces/:id/members/:userId
func (h *WorkspaceMemberHandler) Remove(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.memberService.Remove(middleware.GetWorkspace(c).ID, uint(targetID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

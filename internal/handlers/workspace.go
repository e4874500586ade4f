package handlers

import (
	"github.com/claridoc/backend/internal/middleware"
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

func NewWorkspaceHandler(db *gorm.DB) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: services.NewWorkspaceService(db),
	}
}

// Create creates a workspace in the caller's organization
// POST /api/orgs/:orgId/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req services.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ws, err := h.workspaceService.Create(middleware.GetOrgID(c), &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, ws)
}

// ListForOrg returns the workspaces visible to the caller
// GET /api/orgs/:orgId/workspaces
func (h *WorkspaceHandler) ListForOrg(c *gin.Context) {
	workspaces, err := h.workspaceService.ListForOrg(middleware.GetOrgID(c), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, workspaces)
}

// Get returns a workspace with the caller's effective role and counts
// GET /api/workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	detail, err := h.workspaceService.Get(middleware.GetWorkspace(c).ID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, detail)
}

// Update applies a partial update
// PATCH /api/workspaces/:id
func (h *WorkspaceHandler) Update(c *gin.Context) {
	var req services.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ws, err := h.workspaceService.Update(middleware.GetWorkspace(c).ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ws)
}

// Archive soft-deletes a workspace
// DELETE /api/workspaces/:id
func (h *WorkspaceHandler) Archive(c *gin.Context) {
	if err := h.workspaceService.Archive(middleware.GetWorkspace(c).ID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

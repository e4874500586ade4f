package handlers

import (
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuditLogHandler struct {
	auditService *services.AuditLogService
}

func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{
		auditService: services.NewAuditLogService(db),
	}
}

// List returns paginated audit entries with optional filters
// GET /api/audit-logs
func (h *AuditLogHandler) List(c *gin.Context) {
	var req services.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.auditService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetModules returns the distinct module names seen in the audit log
// GET /api/audit-logs/modules
func (h *AuditLogHandler) GetModules(c *gin.Context) {
	modules, err := h.auditService.GetModules()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"modules": modules})
}

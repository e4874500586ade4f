package handlers

import (
	"github.com/claridoc/backend/internal/middleware"
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(db *gorm.DB) *DocumentHandler {
	return &DocumentHandler{
		documentService: services.NewDocumentService(db),
	}
}

// List returns the documents shared into a workspace
// GET /api/workspaces/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documentService.List(middleware.GetWorkspace(c).ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, docs)
}

// Share records a document in the workspace ledger
// POST /api/workspaces/:id/documents
func (h *DocumentHandler) Share(c *gin.Context) {
	var req services.ShareDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.Share(middleware.GetWorkspace(c).ID, &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, doc)
}

// Unshare removes a document from the ledger
// DELETE /api/workspaces/:id/documents/:docId
func (h *DocumentHandler) Unshare(c *gin.Context) {
	docID := c.Param("docId")
	if docID == "" {
		response.BadRequest(c, "invalid document id")
		return
	}

	if err := h.documentService.Unshare(middleware.GetWorkspace(c).ID, docID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

package main

import (
	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/internal/handlers"
	"github.com/claridoc/backend/internal/middleware"
	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()
	access := services.NewAccessService(db)

	// Rate limiter for unauthenticated endpoints
	publicLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	orgHandler := handlers.NewOrganizationHandler(db)
	workspaceHandler := handlers.NewWorkspaceHandler(db)
	memberHandler := handlers.NewWorkspaceMemberHandler(db)
	documentHandler := handlers.NewDocumentHandler(db)
	invitationHandler := handlers.NewInvitationHandler(db, cfg, svc.taskQueue)
	auditLogHandler := handlers.NewAuditLogHandler(db)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", publicLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Invitation landing page lookup (public, rate limited)
		api.GET("/invitations/:token", publicLimiter.Middleware(), invitationHandler.GetByToken)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Organizations
			protected.GET("/orgs", orgHandler.List)
			protected.POST("/orgs", orgHandler.Create)

			// Invitation acceptance (any authenticated user)
			protected.POST("/invitations/:token/accept", invitationHandler.Accept)

			// Org-scoped routes (any org role)
			orgMember := protected.Group("/orgs/:orgId", middleware.OrgMemberRequired(access))
			{
				orgMember.GET("", orgHandler.Get)
				orgMember.GET("/members", orgHandler.ListMembers)
				orgMember.POST("/workspaces", workspaceHandler.Create)
				orgMember.GET("/workspaces", workspaceHandler.ListForOrg)
			}

			// Org-scoped routes (admin role)
			orgAdmin := protected.Group("/orgs/:orgId", middleware.OrgAdminRequired(access))
			{
				orgAdmin.PATCH("/members/:userId", orgHandler.UpdateMember)
				orgAdmin.DELETE("/members/:userId", orgHandler.RemoveMember)

				orgAdmin.POST("/invitations", invitationHandler.Create)
				orgAdmin.GET("/invitations", invitationHandler.List)
				orgAdmin.DELETE("/invitations/:invitationId", invitationHandler.Revoke)
			}

			// Workspace-scoped routes, gated per operation
			ws := protected.Group("/workspaces")
			{
				ws.GET("/:id", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleViewer), workspaceHandler.Get)
				ws.PATCH("/:id", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleOwner), workspaceHandler.Update)
				ws.DELETE("/:id", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleOwner), workspaceHandler.Archive)

				ws.GET("/:id/members", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleViewer), memberHandler.List)
				ws.POST("/:id/members", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleOwner), memberHandler.Add)
				ws.PATCH("/:id/members/:userId", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleOwner), memberHandler.UpdateRole)
				ws.DELETE("/:id/members/:userId", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleOwner), memberHandler.Remove)

				ws.GET("/:id/documents", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleViewer), documentHandler.List)
				ws.POST("/:id/documents", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleEditor), documentHandler.Share)
				ws.DELETE("/:id/documents/:docId", middleware.WorkspaceAccessRequired(access, models.WorkspaceRoleEditor), documentHandler.Unshare)
			}

			// Platform operator routes
			admin := protected.Group("", middleware.PlatformAdminRequired(db))
			{
				admin.GET("/audit-logs", auditLogHandler.List)
				admin.GET("/audit-logs/modules", auditLogHandler.GetModules)
			}
		}
	}
}

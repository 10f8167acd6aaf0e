package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/campaigner/internal/auth"
	"github.com/mrlokans/campaigner/internal/entities"
	"github.com/mrlokans/campaigner/internal/logger"
)

// One year, the usual preload minimum.
const hstsMaxAge = 365 * 24 * 60 * 60

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadSession())
	}

	passThrough := func(c *gin.Context) { c.Next() }
	requireAdmin, requireWriter := gin.HandlerFunc(passThrough), gin.HandlerFunc(passThrough)
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
		requireAdmin = cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin)
		requireWriter = cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin, entities.UserRoleEditor)
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		var events auth.EventLogger
		if cfg.AuditLog != nil {
			events = cfg.AuditLog
		}
		auth.NewAuthController(cfg.AuthService, cfg.SessionManager, events).RegisterRoutes(api.Group("/auth"))
	}

	var campaignAudit CampaignAuditLogger
	var importAudit ImportAuditLogger
	if cfg.AuditLog != nil {
		campaignAudit = cfg.AuditLog
		importAudit = cfg.AuditLog
	}

	// Import endpoints
	if cfg.Importer != nil {
		importer := NewCampaignImportController(cfg.Importer, cfg.Campaigns, cfg.Auditor, importAudit, cfg.MaxUploadBytes)
		api.POST("/campaigns/import/json", requireWriter, importer.ImportJSON)
		api.POST("/campaigns/import/zip", requireWriter, importer.ImportZIP)
	}

	// Campaign endpoints
	if cfg.Campaigns != nil {
		campaigns := NewCampaignsController(cfg.Campaigns, campaignAudit)
		api.GET("/campaigns", campaigns.List)
		api.POST("/campaigns", requireWriter, campaigns.Create)
		api.GET("/campaigns/:id", campaigns.Get)
		api.PATCH("/campaigns/:id", requireWriter, campaigns.Update)
		api.DELETE("/campaigns/:id", requireWriter, campaigns.Delete)
		api.GET("/campaigns/:id/sections", campaigns.ListSections)
		api.POST("/campaigns/:id/sections", requireWriter, campaigns.CreateSection)
		api.GET("/campaigns/:id/export", campaigns.Export)
		api.DELETE("/sections/:id", requireWriter, campaigns.DeleteSection)
	}

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	tasksController := NewTasksController(cfg.TaskStatus, cfg.AuditCleanup)
	api.GET("/tasks/:id", tasksController.GetTaskStatus)
	api.POST("/admin/audit/cleanup", requireAdmin, tasksController.RunAuditCleanup)

	return router
}

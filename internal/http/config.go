package http

import (
	"github.com/mrlokans/campaigner/internal/audit"
	"github.com/mrlokans/campaigner/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Importer  ImportRunner
	Campaigns CampaignStore
	Database  Pinger

	// Audit trail. Auditor is nil unless raw uploads are archived.
	Auditor  *audit.Auditor
	AuditLog *audit.Service

	// Upload limits
	MaxUploadBytes int64

	// Authentication; all nil in "none" mode except AuthMiddleware.
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue status (optional) and manual audit cleanup.
	TaskStatus   TaskStatusReader
	AuditCleanup AuditCleanupTrigger

	// Application info
	Version string
}

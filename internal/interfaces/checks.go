package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/campaigner/internal/audit"
	"github.com/mrlokans/campaigner/internal/auth"
	"github.com/mrlokans/campaigner/internal/database"
	auditRepo "github.com/mrlokans/campaigner/internal/database/audit"
	"github.com/mrlokans/campaigner/internal/database/campaigns"
	"github.com/mrlokans/campaigner/internal/database/users"
	"github.com/mrlokans/campaigner/internal/http"
	"github.com/mrlokans/campaigner/internal/importers"
	"github.com/mrlokans/campaigner/internal/scheduler"
	"github.com/mrlokans/campaigner/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// CampaignStore implementations
var _ importers.CampaignStore = (*campaigns.Repository)(nil)
var _ http.CampaignStore = (*campaigns.Repository)(nil)

// UserRepository implementations
var _ auth.UserRepository = (*users.Repository)(nil)

// EventStore implementations
var _ audit.EventStore = (*auditRepo.Repository)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Import Engine
// =============================================================================

// ImportRunner implementations
var _ http.ImportRunner = (*importers.Pipeline)(nil)

// =============================================================================
// Audit Log
// =============================================================================

var _ http.ImportAuditLogger = (*audit.Service)(nil)
var _ http.CampaignAuditLogger = (*audit.Service)(nil)
var _ http.AuditEventReader = (*audit.Service)(nil)
var _ auth.EventLogger = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
var _ scheduler.AuditCleanupEnqueuer = scheduler.InlineCleanup{}
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ http.AuditCleanupTrigger = (*scheduler.AuditCleanupScheduler)(nil)

// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - importers.CampaignStore: Writes planned campaigns and sections (internal/importers/pipeline.go)
//   - http.CampaignStore: Campaign CRUD scoped to an owner (internal/http/campaigns.go)
//   - auth.UserRepository: Local accounts and API tokens (internal/auth/service.go)
//   - audit.EventStore: Audit event persistence (internal/audit/service.go)
//
// ## Import Interfaces
//
//   - http.ImportRunner: Runs one upload through the import engine (internal/http/import_campaigns.go)
//   - http.ImportAuditLogger: Records finished imports (internal/http/import_campaigns.go)
//
// ## Background Work Interfaces
//
//   - scheduler.AuditCleanupEnqueuer: Task queue or inline cleanup (internal/scheduler/audit_cleanup.go)
//   - http.TaskStatusReader: Task status lookups (internal/http/tasks.go)
//
// # Adding a New Import Format
//
// To accept another upload format:
//
//  1. Add a ContentKind and its parser in internal/importers/
//
//     const ContentKindYAML ContentKind = "yaml"
//
//     func ParseYAML(raw []byte) (ParseResult, error) {
//         // Produce the same fragments ParseJSON does
//     }
//
//  2. Dispatch on the new kind in Pipeline.parse
//
//  3. Register the upload route in router.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces

// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── campaigns/       # Campaign and section CRUD, import store
//	├── users/           # User lookups and credential bookkeeping
//	└── audit/           # Audit event log
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./campaigner.db")
//
//	campaignRepo := campaigns.NewRepository(db.DB)
//	userRepo := users.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
// # Interface Implementations
//
//   - campaigns.Repository: implements importers.CampaignStore and http.CampaignStore
//   - users.Repository: implements auth.UserRepository
//   - audit.Repository: implements audit.EventStore and tasks.AuditEventCleaner
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database

package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	auditRepo "github.com/mrlokans/campaigner/internal/database/audit"
	"github.com/mrlokans/campaigner/internal/entities"
	"github.com/mrlokans/campaigner/internal/importers"
)

// EventStore persists and queries audit events.
type EventStore interface {
	LogEvent(event *entities.AuditEvent) error
	ListEvents(filter auditRepo.EventFilter) ([]entities.AuditEvent, int64, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

var _ EventStore = (*auditRepo.Repository)(nil)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    EventStore
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo EventStore) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			zap.L().Error("failed to log audit event",
				zap.String("action", event.Action),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// ImportRecord describes one finished import for the audit log.
type ImportRecord struct {
	UserID    uint
	Kind      importers.ContentKind
	FileName  string
	TargetID  *uint
	ArchiveID string
	IPAddress string
	UserAgent string
	Summary   importers.ImportSummary
	Err       error
}

// LogImport records an import event. The event is marked failed when the
// upload was unusable or nothing could be persisted.
func (s *Service) LogImport(rec ImportRecord) {
	summary := rec.Summary
	description := fmt.Sprintf("Imported %d campaigns and %d sections from %s",
		summary.ImportedCampaignsCount, summary.ImportedSectionsCount, rec.FileName)

	event := &entities.AuditEvent{
		UserID:      rec.UserID,
		EventType:   entities.AuditEventImport,
		Action:      string(rec.Kind) + "_import",
		Description: truncate(description, 500),
		EntityType:  "campaign",
		EntityID:    rec.TargetID,
		IPAddress:   rec.IPAddress,
		UserAgent:   truncate(rec.UserAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"file_name":            rec.FileName,
		"campaigns_count":      summary.ImportedCampaignsCount,
		"sections_count":       summary.ImportedSectionsCount,
		"created_campaign_ids": summary.CreatedCampaignIDs,
		"updated_campaign_ids": summary.UpdatedCampaignIDs,
		"errors_count":         len(summary.Errors),
	}
	if rec.ArchiveID != "" {
		metadata["archive_id"] = rec.ArchiveID
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	switch {
	case rec.Err != nil:
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(rec.Err.Error(), 500)
	case summary.Message == importers.MessageFailed:
		event.Status = entities.AuditStatusFailed
		if len(summary.Errors) > 0 {
			event.ErrorMsg = truncate(summary.Errors[0].Error, 500)
		}
	}

	s.LogAsync(event)
}

// LogExport records a campaign export.
func (s *Service) LogExport(userID, campaignID uint, title string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventExport,
		Action:      "campaign_export",
		Description: "Exported campaign: " + title,
		EntityType:  "campaign",
		EntityID:    &campaignID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(userID uint, entityType string, entityID uint, entityName string) {
	description := "Deleted " + entityType
	if entityName != "" {
		description += ": " + entityName
	}

	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventDelete,
		Action:      entityType + "_delete",
		Description: truncate(description, 500),
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter auditRepo.EventFilter) ([]entities.AuditEvent, int64, error) {
	return s.repo.ListEvents(filter)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOlderThan(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

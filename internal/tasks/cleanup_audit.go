package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// AuditCleanupQueue is the backlite queue that prunes the audit log.
const AuditCleanupQueue = "cleanup_audit_events"

// ErrNoRetention is returned when neither the task nor the queue carries a
// retention window. Running without one would empty the audit log.
var ErrNoRetention = errors.New("no audit retention configured")

// AuditEventCleaner provides the ability to delete old audit events.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask prunes import, export, delete and auth events.
// A zero RetentionDays defers to the queue's configured retention.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        AuditCleanupQueue,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func (t CleanupAuditEventsTask) retentionDays(configured int) (int, error) {
	switch {
	case t.RetentionDays > 0:
		return t.RetentionDays, nil
	case configured > 0:
		return configured, nil
	default:
		return 0, ErrNoRetention
	}
}

// CleanupAuditEventsProcessor deletes events older than the task's retention,
// or retentionDays (AUDIT_RETENTION_DAYS) when the task has none.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, retentionDays int) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		days, err := task.retentionDays(retentionDays)
		if err != nil {
			return err
		}

		deleted, err := cleaner.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		zap.L().Info("audit log pruned",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", days),
		)
		return nil
	}
}

// NewCleanupAuditEventsQueue creates the audit cleanup queue.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, retentionDays int) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, retentionDays))
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// TaskStatusReader looks up queued task state.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// AuditCleanupTrigger starts an audit cleanup outside the cron schedule.
// The returned id is empty when the cleanup ran inline.
type AuditCleanupTrigger interface {
	RunNow() (string, error)
}

// TasksController handles task queue endpoints.
type TasksController struct {
	tasks   TaskStatusReader
	cleanup AuditCleanupTrigger
}

// NewTasksController creates a new TasksController. tasks may be nil when the
// queue is disabled.
func NewTasksController(tasks TaskStatusReader, cleanup AuditCleanupTrigger) *TasksController {
	return &TasksController{tasks: tasks, cleanup: cleanup}
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}
	if tc.tasks == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.tasks.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	code := http.StatusOK
	if status == backlite.TaskStatusNotFound {
		code = http.StatusNotFound
	}
	c.JSON(code, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunAuditCleanup handles POST /api/admin/audit/cleanup
func (tc *TasksController) RunAuditCleanup(c *gin.Context) {
	if tc.cleanup == nil {
		respondError(c, http.StatusServiceUnavailable, "audit cleanup is not configured")
		return
	}

	taskID, err := tc.cleanup.RunNow()
	if err != nil {
		respondInternalError(c, err, "audit cleanup")
		return
	}

	if taskID == "" {
		respondSuccess(c, "audit cleanup completed")
		return
	}
	respondAccepted(c, "audit cleanup enqueued", gin.H{"task_id": taskID})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

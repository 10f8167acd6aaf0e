package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditRepo "github.com/mrlokans/campaigner/internal/database/audit"
	"github.com/mrlokans/campaigner/internal/entities"
)

// AuditEventReader lists stored audit events.
type AuditEventReader interface {
	GetEvents(filter auditRepo.EventFilter) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	events AuditEventReader
}

func NewAuditController(events AuditEventReader) *AuditController {
	return &AuditController{events: events}
}

var auditEventTypes = map[entities.AuditEventType]bool{
	entities.AuditEventImport: true,
	entities.AuditEventExport: true,
	entities.AuditEventDelete: true,
	entities.AuditEventAuth:   true,
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?type=import&since=2024-01-02T00:00:00Z&limit=25&offset=0
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, offset := parsePagination(c, 25, 100)

	filter := auditRepo.EventFilter{
		UserID: GetUserID(c),
		Limit:  limit,
		Offset: offset,
	}

	if raw := c.Query("type"); raw != "" {
		eventType := entities.AuditEventType(raw)
		if !auditEventTypes[eventType] {
			respondBadRequest(c, "unknown event type: "+raw)
			return
		}
		filter.Type = eventType
	}

	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "since must be an RFC3339 timestamp")
			return
		}
		filter.Since = since
	}

	events, total, err := ac.events.GetEvents(filter)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}

package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/campaigner/internal/database/campaigns"
	"github.com/mrlokans/campaigner/internal/entities"
	"github.com/mrlokans/campaigner/internal/exporters"
)

// CampaignStore defines the campaign operations behind the CRUD endpoints.
type CampaignStore interface {
	CampaignFinder
	CreateCampaign(ctx context.Context, ownerID uint, title string, concept, toc *string) (uint, error)
	ListCampaigns(ctx context.Context, ownerID uint) ([]entities.Campaign, error)
	GetCampaign(ctx context.Context, ownerID, id uint) (*entities.Campaign, error)
	UpdateCampaign(ctx context.Context, ownerID, id uint, update campaigns.CampaignUpdate) (*entities.Campaign, error)
	DeleteCampaign(ctx context.Context, ownerID, id uint) error
	ListSections(ctx context.Context, ownerID, campaignID uint) ([]entities.Section, error)
	AddSection(ctx context.Context, ownerID, campaignID uint, title *string, content string, order *int) (*entities.Section, error)
	DeleteSection(ctx context.Context, ownerID, sectionID uint) error
}

// CampaignAuditLogger records exports and deletions.
type CampaignAuditLogger interface {
	LogExport(userID, campaignID uint, title string, err error)
	LogDelete(userID uint, entityType string, entityID uint, entityName string)
}

var _ CampaignStore = (*campaigns.Repository)(nil)

type CampaignsController struct {
	store    CampaignStore
	auditLog CampaignAuditLogger
}

func NewCampaignsController(store CampaignStore, auditLog CampaignAuditLogger) *CampaignsController {
	return &CampaignsController{store: store, auditLog: auditLog}
}

// CreateCampaignRequest is the body of POST /api/campaigns.
type CreateCampaignRequest struct {
	Title   string  `json:"title" binding:"required"`
	Concept *string `json:"concept"`
	TOC     *string `json:"toc"`
}

// UpdateCampaignRequest is the body of PATCH /api/campaigns/:id.
type UpdateCampaignRequest struct {
	Title   *string `json:"title"`
	Concept *string `json:"concept"`
	TOC     *string `json:"toc"`
}

// CreateSectionRequest is the body of POST /api/campaigns/:id/sections.
type CreateSectionRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content" binding:"required"`
	Order   *int    `json:"order" binding:"omitempty,min=0"`
}

// List handles GET /api/campaigns
func (cc *CampaignsController) List(c *gin.Context) {
	list, err := cc.store.ListCampaigns(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list campaigns")
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": list, "total": len(list)})
}

// Create handles POST /api/campaigns
func (cc *CampaignsController) Create(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	ownerID := GetUserID(c)
	id, err := cc.store.CreateCampaign(c.Request.Context(), ownerID, req.Title, req.Concept, req.TOC)
	if err != nil {
		if errors.Is(err, campaigns.ErrTitleRequired) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create campaign")
		return
	}

	campaign, err := cc.store.FindCampaign(c.Request.Context(), ownerID, id)
	if err != nil {
		respondInternalError(c, err, "load created campaign")
		return
	}
	respondCreated(c, campaign)
}

// Get handles GET /api/campaigns/:id
func (cc *CampaignsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	campaign, err := cc.store.GetCampaign(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		cc.respondStoreError(c, err, "get campaign")
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// Update handles PATCH /api/campaigns/:id
func (cc *CampaignsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	campaign, err := cc.store.UpdateCampaign(c.Request.Context(), GetUserID(c), id, campaigns.CampaignUpdate{
		Title:   req.Title,
		Concept: req.Concept,
		TOC:     req.TOC,
	})
	if err != nil {
		cc.respondStoreError(c, err, "update campaign")
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// Delete handles DELETE /api/campaigns/:id
func (cc *CampaignsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ownerID := GetUserID(c)
	campaign, err := cc.store.FindCampaign(c.Request.Context(), ownerID, id)
	if err != nil {
		cc.respondStoreError(c, err, "find campaign")
		return
	}

	if err := cc.store.DeleteCampaign(c.Request.Context(), ownerID, id); err != nil {
		cc.respondStoreError(c, err, "delete campaign")
		return
	}

	if cc.auditLog != nil {
		cc.auditLog.LogDelete(ownerID, "campaign", id, campaign.Title)
	}
	respondSuccess(c, "campaign deleted")
}

// ListSections handles GET /api/campaigns/:id/sections
func (cc *CampaignsController) ListSections(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sections, err := cc.store.ListSections(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		cc.respondStoreError(c, err, "list sections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections, "total": len(sections)})
}

// CreateSection handles POST /api/campaigns/:id/sections
func (cc *CampaignsController) CreateSection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	section, err := cc.store.AddSection(c.Request.Context(), GetUserID(c), id, req.Title, *req.Content, req.Order)
	if err != nil {
		cc.respondStoreError(c, err, "create section")
		return
	}
	respondCreated(c, section)
}

// DeleteSection handles DELETE /api/sections/:id
func (cc *CampaignsController) DeleteSection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ownerID := GetUserID(c)
	if err := cc.store.DeleteSection(c.Request.Context(), ownerID, id); err != nil {
		cc.respondStoreError(c, err, "delete section")
		return
	}

	if cc.auditLog != nil {
		cc.auditLog.LogDelete(ownerID, "section", id, "")
	}
	respondSuccess(c, "section deleted")
}

// Export handles GET /api/campaigns/:id/export
func (cc *CampaignsController) Export(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ownerID := GetUserID(c)
	campaign, err := cc.store.GetCampaign(c.Request.Context(), ownerID, id)
	if err != nil {
		cc.respondStoreError(c, err, "export campaign")
		return
	}

	// Buffered so a write failure can still become a JSON error.
	var buf bytes.Buffer
	err = exporters.WriteCampaignZIP(&buf, *campaign, time.Now())
	if cc.auditLog != nil {
		cc.auditLog.LogExport(ownerID, campaign.ID, campaign.Title, err)
	}
	if err != nil {
		respondInternalError(c, err, "export campaign")
		return
	}

	zap.L().Info("campaign exported",
		zap.Uint("campaign_id", campaign.ID),
		zap.Int("sections", len(campaign.Sections)),
		zap.Int("bytes", buf.Len()),
	)
	c.Header("Content-Disposition", `attachment; filename="`+exporters.ArchiveName(*campaign)+`"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (cc *CampaignsController) respondStoreError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, campaigns.ErrCampaignNotFound):
		respondNotFound(c, "campaign")
	case errors.Is(err, campaigns.ErrSectionNotFound):
		respondNotFound(c, "section")
	case errors.Is(err, campaigns.ErrTitleRequired):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

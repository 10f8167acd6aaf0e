package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/campaigner/internal/audit"
	"github.com/mrlokans/campaigner/internal/database/campaigns"
	"github.com/mrlokans/campaigner/internal/entities"
	"github.com/mrlokans/campaigner/internal/importers"
	"github.com/mrlokans/campaigner/internal/logger"
)

// multipartOverhead leaves room for boundaries and the other form fields on
// top of the file itself.
const multipartOverhead = 1 << 20

// ImportRunner runs one upload through the import engine.
type ImportRunner interface {
	Import(ctx context.Context, kind importers.ContentKind, req importers.Request) (importers.ImportSummary, error)
}

// CampaignFinder resolves a target campaign for the caller.
type CampaignFinder interface {
	FindCampaign(ctx context.Context, ownerID, id uint) (*entities.Campaign, error)
}

// ImportAuditLogger records finished imports.
type ImportAuditLogger interface {
	LogImport(rec audit.ImportRecord)
}

// uploadRejection is an upload refused before the engine saw it.
type uploadRejection struct {
	status int
	err    error
}

func reject(status int, format string, args ...any) *uploadRejection {
	return &uploadRejection{
		status: status,
		err:    fmt.Errorf("%w: %s", importers.ErrUploadRejected, fmt.Sprintf(format, args...)),
	}
}

// CampaignImportController accepts JSON and ZIP uploads.
type CampaignImportController struct {
	runner         ImportRunner
	campaigns      CampaignFinder
	auditor        *audit.Auditor
	auditLog       ImportAuditLogger
	maxUploadBytes int64
}

// NewCampaignImportController creates the controller. auditor and auditLog
// may be nil.
func NewCampaignImportController(runner ImportRunner, finder CampaignFinder, auditor *audit.Auditor, auditLog ImportAuditLogger, maxUploadBytes int64) *CampaignImportController {
	return &CampaignImportController{
		runner:         runner,
		campaigns:      finder,
		auditor:        auditor,
		auditLog:       auditLog,
		maxUploadBytes: maxUploadBytes,
	}
}

// ImportJSON handles POST /api/campaigns/import/json
func (ic *CampaignImportController) ImportJSON(c *gin.Context) {
	ic.handle(c, importers.ContentKindJSON)
}

// ImportZIP handles POST /api/campaigns/import/zip
func (ic *CampaignImportController) ImportZIP(c *gin.Context) {
	ic.handle(c, importers.ContentKindZIP)
}

func (ic *CampaignImportController) handle(c *gin.Context, kind importers.ContentKind) {
	started := time.Now()
	ownerID := GetUserID(c)
	record := audit.ImportRecord{
		UserID:    ownerID,
		Kind:      kind,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	req, fileName, rejection := ic.readRequest(c, kind, ownerID)
	record.FileName = fileName
	if rejection != nil {
		summary := importers.FailedSummary(archiveFileName(kind, fileName), rejection.err)
		record.Summary = summary
		record.Err = rejection.err
		ic.finish(c, rejection.status, record, started)
		return
	}
	record.TargetID = req.TargetCampaignID

	if ic.auditor != nil {
		id, err := ic.auditor.SaveUpload(fileName, req.Content)
		if err != nil {
			zap.L().Warn("failed to archive upload", zap.String("file_name", fileName), zap.Error(err))
		}
		record.ArchiveID = id
	}

	// A client disconnect must not leave a half-applied plan behind.
	summary, err := ic.runner.Import(context.WithoutCancel(c.Request.Context()), kind, req)
	if err != nil {
		summary = importers.FailedSummary(archiveFileName(kind, fileName), err)
	}
	record.Summary = summary
	record.Err = err

	status := http.StatusOK
	if err != nil && (importers.IsEncodingError(err) || errors.Is(err, importers.ErrUploadRejected)) {
		status = http.StatusBadRequest
	}

	if record.ArchiveID != "" {
		if err := ic.auditor.SaveSummary(record.ArchiveID, summary); err != nil {
			zap.L().Warn("failed to archive import summary", zap.String("archive_id", record.ArchiveID), zap.Error(err))
		}
	}

	ic.finish(c, status, record, started)
}

// readRequest validates the multipart form and loads the upload.
func (ic *CampaignImportController) readRequest(c *gin.Context, kind importers.ContentKind, ownerID uint) (importers.Request, string, *uploadRejection) {
	if ic.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxUploadBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return importers.Request{}, "", reject(http.StatusRequestEntityTooLarge, "upload exceeds %d bytes", ic.maxUploadBytes)
		}
		return importers.Request{}, "", reject(http.StatusBadRequest, "no file provided in field %q", "file")
	}
	fileName := fileHeader.Filename

	if detected, ok := importers.ContentKindFromFileName(fileName); !ok || detected != kind {
		return importers.Request{}, fileName, reject(http.StatusBadRequest, "expected a .%s file, got %q", kind, fileName)
	}
	if ic.maxUploadBytes > 0 && fileHeader.Size > ic.maxUploadBytes {
		return importers.Request{}, fileName, reject(http.StatusRequestEntityTooLarge, "file is %d bytes, limit is %d", fileHeader.Size, ic.maxUploadBytes)
	}

	content, err := readUpload(fileHeader, ic.maxUploadBytes)
	if err != nil {
		return importers.Request{}, fileName, reject(http.StatusBadRequest, "failed to read upload: %v", err)
	}

	req := importers.Request{
		Content: content,
		OwnerID: ownerID,
	}

	if raw := c.PostForm("campaign_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return importers.Request{}, fileName, reject(http.StatusBadRequest, "invalid campaign_id %q", raw)
		}
		if _, err := ic.campaigns.FindCampaign(c.Request.Context(), ownerID, uint(id)); err != nil {
			if errors.Is(err, campaigns.ErrCampaignNotFound) {
				return importers.Request{}, fileName, reject(http.StatusNotFound, "campaign %d not found", id)
			}
			return importers.Request{}, fileName, reject(http.StatusInternalServerError, "failed to resolve campaign %d: %v", id, err)
		}
		target := uint(id)
		req.TargetCampaignID = &target
	}

	if raw := c.PostForm("process_folders_as_structure"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return importers.Request{}, fileName, reject(http.StatusBadRequest, "invalid process_folders_as_structure %q", raw)
		}
		req.ProcessFoldersAsStructure = enabled
	}

	return req, fileName, nil
}

func readUpload(fileHeader *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	if limit > 0 {
		reader = io.LimitReader(file, limit+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(content)) > limit {
		return nil, fmt.Errorf("upload exceeds %d bytes", limit)
	}
	return content, nil
}

func (ic *CampaignImportController) finish(c *gin.Context, status int, record audit.ImportRecord, started time.Time) {
	if ic.auditLog != nil {
		ic.auditLog.LogImport(record)
	}

	summary := record.Summary
	fields := []zap.Field{
		zap.String("request_id", logger.RequestID(c)),
		zap.Uint("user_id", record.UserID),
		zap.String("kind", string(record.Kind)),
		zap.String("file_name", record.FileName),
		zap.Int("status", status),
		zap.Int("campaigns", summary.ImportedCampaignsCount),
		zap.Int("sections", summary.ImportedSectionsCount),
		zap.Int("errors", len(summary.Errors)),
		zap.Duration("duration", time.Since(started)),
	}
	if record.TargetID != nil {
		fields = append(fields, zap.Uint("campaign_id", *record.TargetID))
	}
	if record.Err != nil {
		fields = append(fields, zap.Error(record.Err))
	}

	if status >= http.StatusBadRequest || summary.Message == importers.MessageFailed {
		zap.L().Warn("campaign import failed", fields...)
	} else {
		zap.L().Info("campaign import finished", fields...)
	}

	c.JSON(status, summary)
}

// archiveFileName is the file_name reported for upload-level failures: the
// archive name for ZIP uploads, nothing for a single JSON document.
func archiveFileName(kind importers.ContentKind, fileName string) string {
	if kind != importers.ContentKindZIP {
		return ""
	}
	return fileName
}

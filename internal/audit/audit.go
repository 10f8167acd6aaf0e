package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auditor keeps raw uploads and their import summaries on disk so a failed
// import can be replayed or inspected later.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveUpload stores data under a fresh UUID4 name that keeps the original
// extension. It returns the archive id (the name without extension).
func (a *Auditor) SaveUpload(originalName string, data []byte) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(a.AuditDir, id+ext)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload archive: %w", err)
	}

	zap.L().Debug("archived upload",
		zap.String("archive_id", id),
		zap.String("file_name", originalName),
		zap.Int("bytes", len(data)),
	)
	return id, nil
}

// SaveSummary writes summary as indented JSON next to the upload with the
// same archive id.
func (a *Auditor) SaveSummary(id string, summary any) error {
	if err := a.ensureAuditDir(); err != nil {
		return fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary to JSON: %w", err)
	}

	path := filepath.Join(a.AuditDir, id+".summary.json")
	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0o755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, 2, cfg.Global.ShutdownTimeoutInSeconds)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 25, cfg.Import.MaxUploadSizeMB)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxEntryBytes())
	assert.Equal(t, DefaultCampaignTitle, cfg.Import.DefaultCampaignTitle)
	assert.Equal(t, "0 3 * * *", cfg.Audit.CleanupSchedule)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("IMPORT_MAX_UPLOAD_SIZE_MB", "5")
	t.Setenv("IMPORT_DEFAULT_CAMPAIGN_TITLE", "Uploads")
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("AUDIT_SAVE_UPLOADS", "true")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, int64(5<<20), cfg.Import.MaxUploadBytes())
	assert.Equal(t, "Uploads", cfg.Import.DefaultCampaignTitle)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.True(t, cfg.Audit.SaveUploads)
}

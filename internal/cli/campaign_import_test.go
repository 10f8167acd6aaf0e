package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/campaigner/internal/database"
	auditRepo "github.com/mrlokans/campaigner/internal/database/audit"
	"github.com/mrlokans/campaigner/internal/database/campaigns"
	"github.com/mrlokans/campaigner/internal/entities"
)

const campaignJSON = `{"title": "The Sunken Keep", "sections": [{"title": "Arrival", "content": "Rain."}]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCampaignImportCommand_ParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"minimal", []string{"-file", "doc.json"}, false},
		{"all flags", []string{"-file", "a.zip", "-user", "2", "-campaign", "5", "-folders", "-dry-run", "-verbose", "-db", "x.db"}, false},
		{"missing file", []string{"-user", "2"}, true},
		{"unsupported extension", []string{"-file", "notes.txt"}, true},
		{"negative user", []string{"-file", "doc.json", "-user", "-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCampaignImportCommand()
			err := cmd.ParseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}

	cmd := NewCampaignImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-file", "a.zip", "-user", "2", "-campaign", "5", "-folders"}))
	assert.Equal(t, uint(2), cmd.UserID)
	assert.Equal(t, uint(5), cmd.CampaignID)
	assert.True(t, cmd.Folders)
}

func TestCampaignImportCommand_Run(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "campaigner.db")
	docPath := writeFile(t, dir, "keep.json", campaignJSON)

	var out bytes.Buffer
	cmd := NewCampaignImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-file", docPath, "-db", dbPath, "-user", "3"}))
	cmd.Out = &out

	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), "Import completed successfully")

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	list, err := campaigns.NewRepository(db.DB).ListCampaigns(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "The Sunken Keep", list[0].Title)

	events, total, err := auditRepo.NewRepository(db.DB).ListEvents(auditRepo.EventFilter{UserID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, entities.AuditEventImport, events[0].EventType)
	assert.Equal(t, "json_import", events[0].Action)
}

func TestCampaignImportCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "campaigner.db")
	docPath := writeFile(t, dir, "keep.json", campaignJSON)

	var out bytes.Buffer
	cmd := NewCampaignImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-file", docPath, "-db", dbPath, "-dry-run", "-verbose"}))
	cmd.Out = &out

	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), `create campaign "The Sunken Keep" (1 sections)`)
	assert.Contains(t, out.String(), "[0] Arrival")

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	list, err := campaigns.NewRepository(db.DB).ListCampaigns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCampaignImportCommand_UnknownTarget(t *testing.T) {
	dir := t.TempDir()
	docPath := writeFile(t, dir, "keep.json", campaignJSON)

	cmd := NewCampaignImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-file", docPath, "-db", filepath.Join(dir, "c.db"), "-campaign", "42"}))
	cmd.Out = &bytes.Buffer{}

	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "campaign 42 not found")
}

func TestCampaignImportCommand_MalformedDocument(t *testing.T) {
	dir := t.TempDir()
	docPath := writeFile(t, dir, "bad.json", `{"title": `)

	var out bytes.Buffer
	cmd := NewCampaignImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-file", docPath, "-db", filepath.Join(dir, "c.db")}))
	cmd.Out = &out

	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, out.String(), "Import failed")
}

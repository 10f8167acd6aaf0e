package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/campaigner/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "campaigner.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	for _, model := range []any{&entities.User{}, &entities.Campaign{}, &entities.Section{}, &entities.AuditEvent{}} {
		assert.True(t, db.DB.Migrator().HasTable(model))
	}
}

func TestNewDatabase_MigrateIsRepeatable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "campaigner.db")

	first, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer second.Close()

	assert.NoError(t, Migrate(second.DB))
}

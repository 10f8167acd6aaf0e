package users

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/campaigner/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	return NewRepository(db)
}

func createUser(t *testing.T, repo *Repository, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         entities.UserRoleEditor,
	}
	require.NoError(t, repo.CreateUser(user))
	return user
}

func TestRepository_CreateAndLookup(t *testing.T) {
	repo := setupTestDB(t)
	created := createUser(t, repo, "gm")

	assert.NotZero(t, created.ID)

	byID, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "gm", byID.Username)

	byName, err := repo.GetUserByLogin("gm")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.GetUserByLogin("gm@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetUserByID(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_DuplicateUsername(t *testing.T) {
	repo := setupTestDB(t)
	createUser(t, repo, "gm")

	exists, err := repo.Exists("gm", "other@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.CreateUser(&entities.User{Username: "gm", Email: "other@example.com"})
	assert.Error(t, err)
}

func TestRepository_CountUsers(t *testing.T) {
	repo := setupTestDB(t)

	count, err := repo.CountUsers()
	require.NoError(t, err)
	assert.Zero(t, count)

	createUser(t, repo, "one")
	createUser(t, repo, "two")

	count, err = repo.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepository_TokenHash(t *testing.T) {
	repo := setupTestDB(t)
	user := createUser(t, repo, "gm")
	now := time.Now()

	require.NoError(t, repo.SetTokenHash(user.ID, "abc123", &now))

	found, err := repo.GetUserByTokenHash("abc123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	require.NotNil(t, found.TokenCreatedAt)

	require.NoError(t, repo.SetTokenHash(user.ID, "", nil))

	_, err = repo.GetUserByTokenHash("abc123")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetUserByTokenHash("")
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = repo.SetTokenHash(999, "x", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_LoginBookkeeping(t *testing.T) {
	repo := setupTestDB(t)
	user := createUser(t, repo, "gm")
	lockedUntil := time.Now().Add(time.Hour)

	require.NoError(t, repo.RecordFailedLogin(user.ID, 5, &lockedUntil))

	locked, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, locked.FailedLoginCount)
	require.NotNil(t, locked.LockedUntil)

	require.NoError(t, repo.RecordLogin(user.ID, time.Now()))

	unlocked, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, unlocked.FailedLoginCount)
	assert.Nil(t, unlocked.LockedUntil)
	assert.NotNil(t, unlocked.LastLoginAt)
}

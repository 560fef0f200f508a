package repository

import (
	"context"
	"errors"
	"testing"

	"ikaze/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byUsername)
	assert.Equal(t, user.ID, byUsername.ID)
}

func TestUserRepository_MissingLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 404)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// Existence checks return nil without an error.
	byEmail, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, byEmail)

	byUsername, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, byUsername)
}

func TestUserRepository_DuplicateEmailConflicts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		Username: "alice", Email: "alice@example.com", Password: "hash",
	}))

	err := repo.Create(ctx, &models.User{
		Username: "alice2", Email: "alice@example.com", Password: "hash",
	})
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestUserRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "alice")
	user.Bio = "updated bio"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated bio", got.Bio)
}

func TestUserRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedUser(t, db, "carol")

	users, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	rest, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

package repository

import (
	"testing"

	"ikaze/internal/database"
	"ikaze/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A fresh in-memory database exists per connection; pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		Name:     username,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, authorID uint, slug string, published bool) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:     "Post " + slug,
		Content:   "Content of " + slug,
		Slug:      slug,
		AuthorID:  authorID,
		Published: published,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// Package bootstrap wires up runtime dependencies shared by the binaries.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"ikaze/internal/cache"
	"ikaze/internal/config"
	"ikaze/internal/database"
	"ikaze/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and applies development
// bootstrapping. The Redis client may be nil when the server is unreachable;
// callers degrade to no-cache in that case.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()

	if err := ensureDevAccount(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development account: %w", err)
	}

	return db, rdb, nil
}

// ensureDevAccount creates a well-known login account for local frontend
// work. It only runs in development with DEV_BOOTSTRAP_USER enabled.
func ensureDevAccount(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapUser {
		return nil
	}

	username := strings.TrimSpace(cfg.DevUserName)
	if username == "" {
		username = "ikaze_dev"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevUserEmail))
	if email == "" {
		email = "dev@ikaze.local"
	}
	if cfg.DevUserPassword == "" {
		return fmt.Errorf("DEV_USER_PASSWORD must be set when DEV_BOOTSTRAP_USER is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DevUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash dev password: %w", err)
	}

	var user models.User
	findErr := db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(findErr, gorm.ErrRecordNotFound):
		user = models.User{
			Name:     "Ikaze Dev",
			Username: username,
			Email:    email,
			Password: string(hashedPassword),
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("development account created: %s", email)
	case findErr != nil:
		return findErr
	default:
		if err := db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
			return err
		}
	}

	return nil
}

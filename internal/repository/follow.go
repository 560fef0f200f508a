// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"ikaze/internal/cache"
	"ikaze/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow relationship operations
type FollowRepository interface {
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	Follow(ctx context.Context, followerID, followingID uint) (int64, error)
	Unfollow(ctx context.Context, followerID, followingID uint) (int64, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
}

// followRepository implements FollowRepository
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Follow inserts the relationship with ON CONFLICT DO NOTHING so concurrent
// toggles never error. Returns the number of rows inserted; 0 means the
// relationship already existed.
func (r *followRepository) Follow(ctx context.Context, followerID, followingID uint) (int64, error) {
	follow := models.Follow{FollowerID: followerID, FollowingID: followingID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).
		Create(&follow)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	cache.Invalidate(ctx, cache.UserStatsKey(followingID))
	cache.Invalidate(ctx, cache.UserStatsKey(followerID))
	return result.RowsAffected, nil
}

// Unfollow hard-deletes the relationship. Returns the number of rows
// removed; 0 means another request already removed it.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	cache.Invalidate(ctx, cache.UserStatsKey(followingID))
	cache.Invalidate(ctx, cache.UserStatsKey(followerID))
	return result.RowsAffected, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows f ON users.id = f.follower_id").
		Where("f.following_id = ?", userID).
		Order("f.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows f ON users.id = f.following_id").
		Where("f.follower_id = ?", userID).
		Order("f.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

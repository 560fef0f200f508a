// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"ikaze/internal/cache"
	"ikaze/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, includeDrafts bool, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	CountByAuthor(ctx context.Context, authorID uint, publishedOnly bool) (int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
	Like(ctx context.Context, userID, postID uint) (int64, error)
	Unlike(ctx context.Context, userID, postID uint) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string, currentUserID uint) (*models.Post, error) {
	var post models.Post

	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, func() error {
			return r.findBySlug(ctx, slug, 0, &post)
		})
	} else {
		err = r.findBySlug(ctx, slug, currentUserID, &post)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) findBySlug(ctx context.Context, slug string, currentUserID uint, post *models.Post) error {
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Where("posts.slug = ?", slug).
		First(post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Post", slug)
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Where("posts.published = ?", true).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, includeDrafts bool, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Where("posts.author_id = ?", authorID)
	if !includeDrafts {
		q = q.Where("posts.published = ?", true)
	}
	err := q.Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Search matches published posts whose title, excerpt, content or tags
// contain the query, case-insensitively, newest first.
func (r *postRepository) Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + strings.ToLower(query) + "%"
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Where("posts.published = ?", true).
		Where(
			"LOWER(posts.title) LIKE ? OR LOWER(posts.excerpt) LIKE ? OR LOWER(posts.content) LIKE ? OR LOWER(posts.tags) LIKE ?",
			like, like, like, like,
		).
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comment_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as like_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "slug").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug, post.ID)
	return nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint, publishedOnly bool) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Like inserts the like row with ON CONFLICT DO NOTHING so concurrent
// toggles and duplicate submissions never error. Returns the number of
// rows inserted; 0 means the like already existed.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (int64, error) {
	like := models.Like{UserID: userID, PostID: postID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	cache.Invalidate(ctx, cache.PostStatsKey(postID))
	return result.RowsAffected, nil
}

// Unlike hard-deletes the like row. Returns the number of rows removed;
// 0 means another request already removed it.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	cache.Invalidate(ctx, cache.PostStatsKey(postID))
	return result.RowsAffected, nil
}

package service

import (
	"context"
	"log/slog"
	"strings"

	"ikaze/internal/cache"
	"ikaze/internal/middleware"
	"ikaze/internal/models"
	"ikaze/internal/notifications"
	"ikaze/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	notifier    *notifications.Notifier
}

type CreateCommentInput struct {
	UserID   uint
	PostSlug string
	Content  string
	ParentID *uint
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	notifier *notifications.Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		notifier:    notifier,
	}
}

const maxCommentLen = 10000

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.PostSlug, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := draftGuard(post, in.UserID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	var parent *models.Comment
	if in.ParentID != nil {
		parent, err = s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		// Replies must target a comment on the same post.
		if parent.PostID != post.ID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: in.UserID,
		PostID:   post.ID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, post.Slug, post.ID)
	s.notifyComment(ctx, comment, post, parent)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) notifyComment(ctx context.Context, comment *models.Comment, post *models.Post, parent *models.Comment) {
	if s.notifier == nil {
		return
	}
	author, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return
	}
	event := notifications.Event{
		ActorID:   comment.AuthorID,
		ActorName: author.Author.Username,
		PostSlug:  post.Slug,
		CommentID: comment.ID,
	}

	if parent != nil && parent.AuthorID != comment.AuthorID {
		event.Type = notifications.EventCommentReply
		if err := s.notifier.PublishUser(ctx, parent.AuthorID, event); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish reply event", slog.String("error", err.Error()))
		}
		return
	}
	if post.AuthorID != comment.AuthorID {
		event.Type = notifications.EventNewComment
		if err := s.notifier.PublishUser(ctx, post.AuthorID, event); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish comment event", slog.String("error", err.Error()))
		}
	}
}

func (s *CommentService) ListComments(ctx context.Context, postSlug string, limit, offset int, currentUserID uint) ([]*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug, currentUserID)
	if err != nil {
		return nil, err
	}
	if err := draftGuard(post, currentUserID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.commentRepo.ListByPost(ctx, post.ID, limit, offset)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != in.UserID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostStatsKey(comment.PostID))
	return nil
}

// Package service contains the business logic layer of the application.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ikaze/internal/cache"
	"ikaze/internal/models"
	"ikaze/internal/repository"
	"ikaze/internal/validation"
)

const (
	maxTitleLen   = 200
	maxExcerptLen = 500
	maxContentLen = 100000
	maxTags       = 10

	searchMinQueryLen = 2
	searchResultLimit = 10
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	AuthorID  uint
	Title     string
	Slug      string
	Content   string
	Excerpt   string
	Tags      []string
	Published bool
}

type UpdatePostInput struct {
	UserID    uint
	Slug      string
	Title     *string
	Content   *string
	Excerpt   *string
	Tags      []string
	Published *bool
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
	AuthorID      uint
	Published     *bool
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(in.Title, in.Content, in.Excerpt, in.Tags); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		Excerpt:   strings.TrimSpace(in.Excerpt),
		Tags:      normalizeTags(in.Tags),
		Published: in.Published,
		AuthorID:  in.AuthorID,
	}

	slug, err := s.uniqueSlug(ctx, in.Slug, post.Title)
	if err != nil {
		return nil, err
	}
	post.Slug = slug

	if in.Published {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.AuthorID)
}

// uniqueSlug resolves the post slug. A client-supplied slug must pass
// validation as-is; otherwise one is derived from the title. Either way
// a numeric suffix is appended until no published or draft post claims it.
func (s *PostService) uniqueSlug(ctx context.Context, requested, title string) (string, error) {
	base := strings.TrimSpace(requested)
	if base != "" {
		if err := validation.ValidateSlug(base); err != nil {
			return "", models.NewValidationError("Invalid slug: " + err.Error())
		}
	} else {
		base = validation.Slugify(title)
		if base == "" {
			return "", models.NewValidationError("Title must contain at least one letter or number")
		}
		if err := validation.ValidateSlug(base); err != nil {
			base = base + "-post"
		}
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := s.postRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *PostService) GetPost(ctx context.Context, slug string, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug, currentUserID)
	if err != nil {
		return nil, err
	}
	if err := draftGuard(post, currentUserID); err != nil {
		return nil, err
	}
	return post, nil
}

// draftGuard hides unpublished posts from everyone but their author,
// reporting them as absent rather than forbidden.
func draftGuard(post *models.Post, currentUserID uint) error {
	if !post.Published && post.AuthorID != currentUserID {
		return models.NewNotFoundError("Post", post.Slug)
	}
	return nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit := in.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	wantDrafts := in.Published != nil && !*in.Published

	if in.AuthorID != 0 {
		includeDrafts := in.AuthorID == in.CurrentUserID && in.CurrentUserID != 0
		if wantDrafts && !includeDrafts {
			// Drafts are visible to their author only.
			return []*models.Post{}, nil
		}
		posts, err := s.postRepo.ListByAuthor(ctx, in.AuthorID, includeDrafts, limit, in.Offset, in.CurrentUserID)
		if err != nil {
			return nil, err
		}
		return filterPublished(posts, in.Published), nil
	}

	if wantDrafts {
		// Without an author filter, unpublished means the caller's own drafts.
		if in.CurrentUserID == 0 {
			return []*models.Post{}, nil
		}
		posts, err := s.postRepo.ListByAuthor(ctx, in.CurrentUserID, true, limit, in.Offset, in.CurrentUserID)
		if err != nil {
			return nil, err
		}
		return filterPublished(posts, in.Published), nil
	}

	return s.postRepo.List(ctx, limit, in.Offset, in.CurrentUserID)
}

// filterPublished narrows a listing to the requested published state.
func filterPublished(posts []*models.Post, published *bool) []*models.Post {
	if published == nil {
		return posts
	}
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Published == *published {
			out = append(out, p)
		}
	}
	return out
}

func (s *PostService) GetUserPosts(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	// Authors see their own drafts alongside published posts.
	includeDrafts := authorID == currentUserID && currentUserID != 0
	return s.postRepo.ListByAuthor(ctx, authorID, includeDrafts, limit, offset, currentUserID)
}

// SearchPosts matches published posts against the query. Queries shorter
// than two characters return an empty result instead of an error.
func (s *PostService) SearchPosts(ctx context.Context, query string, currentUserID uint) ([]*models.Post, error) {
	query = strings.TrimSpace(query)
	if len(query) < searchMinQueryLen {
		return []*models.Post{}, nil
	}

	if currentUserID == 0 {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.SearchKey(strings.ToLower(query)), &posts, cache.SearchTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.Search(ctx, query, searchResultLimit, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}

	return s.postRepo.Search(ctx, query, searchResultLimit, currentUserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Tags != nil {
		post.Tags = normalizeTags(in.Tags)
	}
	if in.Published != nil {
		if *in.Published && post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		}
		post.Published = *in.Published
	}

	if err := validatePostFields(post.Title, post.Content, post.Excerpt, post.Tags); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, userID uint, slug string) error {
	post, err := s.postRepo.GetBySlug(ctx, slug, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, post.ID)
}

func validatePostFields(title, content, excerpt string, tags []string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 100000 characters)")
	}
	if len(excerpt) > maxExcerptLen {
		return models.NewValidationError("Excerpt too long (max 500 characters)")
	}
	if len(tags) > maxTags {
		return models.NewValidationError("Too many tags (max 10)")
	}
	return nil
}

// normalizeTags lowercases, trims and dedupes tags, dropping empties.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

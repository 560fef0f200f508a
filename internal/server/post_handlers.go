package server

import (
	"strconv"

	"ikaze/internal/models"
	"ikaze/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchPosts handles GET /api/posts/search?q=...
// Queries shorter than two characters return an empty list, not an error.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	q := c.Query("q")
	userID, _ := s.optionalUserID(c)

	posts, err := s.postService.SearchPosts(ctx, q, userID)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title     string   `json:"title"`
		Slug      string   `json:"slug"`
		Content   string   `json:"content"`
		Excerpt   string   `json:"excerpt"`
		Tags      []string `json:"tags"`
		Published bool     `json:"published"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		AuthorID:  userID,
		Title:     req.Title,
		Slug:      req.Slug,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Tags:      req.Tags,
		Published: req.Published,
	})
	if err != nil {
		return errResponse(c, err)
	}

	s.publishPostEvent(c, EventPostPublished, post)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// GetPosts handles GET /api/posts?published=bool&author=id
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)
	userID, _ := s.optionalUserID(c)

	in := service.ListPostsInput{
		Limit:         page.Limit,
		Offset:        page.Offset,
		CurrentUserID: userID,
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid author ID"))
		}
		in.AuthorID = uint(authorID)
	}
	if raw := c.Query("published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("published must be true or false"))
		}
		in.Published = &published
	}

	posts, err := s.postService.ListPosts(ctx, in)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:slug
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	slug := c.Params("slug")
	userID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(ctx, slug, userID)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"post": post})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)
	currentUserID, _ := s.optionalUserID(c)

	posts, err := s.postService.GetUserPosts(ctx, authorID, page.Limit, page.Offset, currentUserID)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// UpdatePost handles PUT /api/posts/:slug
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	slug := c.Params("slug")

	var req struct {
		Title     *string  `json:"title"`
		Content   *string  `json:"content"`
		Excerpt   *string  `json:"excerpt"`
		Tags      []string `json:"tags"`
		Published *bool    `json:"published"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:    userID,
		Slug:      slug,
		Title:     req.Title,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Tags:      req.Tags,
		Published: req.Published,
	})
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"post": post})
}

// DeletePost handles DELETE /api/posts/:slug
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	slug := c.Params("slug")

	if err := s.postService.DeletePost(ctx, userID, slug); err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

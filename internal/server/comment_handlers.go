package server

import (
	"ikaze/internal/models"
	"ikaze/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:slug/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()
	slug := c.Params("slug")
	page := parsePagination(c, 50)
	userID, _ := s.optionalUserID(c)

	comments, err := s.commentService.ListComments(ctx, slug, page.Limit, page.Offset, userID)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/posts/:slug/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	slug := c.Params("slug")

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID:   userID,
		PostSlug: slug,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return errResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    userID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if svcErr != nil {
		return errResponse(c, svcErr)
	}

	return c.JSON(fiber.Map{"comment": comment})
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    userID,
		CommentID: commentID,
	}); svcErr != nil {
		return errResponse(c, svcErr)
	}

	return c.JSON(fiber.Map{"success": true})
}

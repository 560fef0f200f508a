package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetLikeStatus handles GET /api/posts/:slug/like
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	ctx := c.Context()
	slug := c.Params("slug")
	userID, _ := s.optionalUserID(c)

	status, err := s.engagementService.GetLikeStatus(ctx, slug, userID)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(status)
}

// ToggleLike handles POST /api/posts/:slug/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	slug := c.Params("slug")

	result, err := s.engagementService.ToggleLike(ctx, userID, slug)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(result)
}

// GetFollowStatus handles GET /api/users/:id/follow
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	ctx := c.Context()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	status, svcErr := s.engagementService.GetFollowStatus(ctx, targetID, userID)
	if svcErr != nil {
		return errResponse(c, svcErr)
	}

	return c.JSON(status)
}

// ToggleFollow handles POST /api/users/:id/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, svcErr := s.engagementService.ToggleFollow(ctx, userID, targetID)
	if svcErr != nil {
		return errResponse(c, svcErr)
	}

	return c.JSON(result)
}

// GetUserStats handles GET /api/users/:id/stats
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	ctx := c.Context()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	stats, svcErr := s.engagementService.GetUserStats(ctx, targetID)
	if svcErr != nil {
		return errResponse(c, svcErr)
	}

	return c.JSON(stats)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	ctx := c.Context()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	users, svcErr := s.followRepo.ListFollowers(ctx, targetID, page.Limit, page.Offset)
	if svcErr != nil {
		return errResponse(c, svcErr)
	}

	return c.JSON(fiber.Map{"users": publicProfiles(users)})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	ctx := c.Context()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	users, svcErr := s.followRepo.ListFollowing(ctx, targetID, page.Limit, page.Offset)
	if svcErr != nil {
		return errResponse(c, svcErr)
	}

	return c.JSON(fiber.Map{"users": publicProfiles(users)})
}

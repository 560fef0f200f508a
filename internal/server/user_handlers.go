package server

import (
	"ikaze/internal/models"
	"ikaze/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// UpdateMyProfile handles PUT /api/profile
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(ctx, service.UpdateProfileInput{
		UserID:   userID,
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.GetUserByID(ctx, userID)
	if svcErr != nil {
		return errResponse(c, svcErr)
	}

	return c.JSON(fiber.Map{"user": user.PublicProfile()})
}

// GetProfile handles GET /api/profiles/:username
func (s *Server) GetProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Params("username")

	user, err := s.userService.GetUserByUsername(ctx, username)
	if err != nil {
		return errResponse(c, err)
	}

	return c.JSON(fiber.Map{"user": user.PublicProfile()})
}

// publicProfiles converts users to their public representation.
func publicProfiles(users []models.User) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		out = append(out, users[i].PublicProfile())
	}
	return out
}

package server

import (
	"visage/internal/models"
	"visage/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 30
)

// passwordLengthOK enforces the schema-level length bounds before the
// strength policy runs.
func passwordLengthOK(password string) bool {
	return len(password) >= minPasswordLen && len(password) <= maxPasswordLen
}

// CreateUser handles POST /v1/users.
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email, username, and password are required"))
	}
	if !passwordLengthOK(req.Password) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password must be between 8 and 30 characters"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

// GetUser handles GET /v1/users/:id.
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.userService.GetByID(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// UpdateUsername handles PUT /v1/users/username.
func (s *Server) UpdateUsername(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	user, err := s.userService.UpdateUsername(c.UserContext(), currentUserID(c), req.Username)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user.Public())
}

// UpdatePassword handles PUT /v1/users/password.
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Old and new passwords are required"))
	}
	if !passwordLengthOK(req.NewPassword) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password must be between 8 and 30 characters"))
	}

	user, err := s.userService.UpdatePassword(c.UserContext(), currentUserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user.Public())
}

// DeleteUser handles DELETE /v1/users. The password re-confirms the caller's
// identity beyond the bearer token.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password is required"))
	}

	if err := s.userService.Delete(c.UserContext(), currentUserID(c), req.Password); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

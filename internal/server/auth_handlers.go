package server

import (
	"time"

	"visage/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LoginResponse is the wire shape of a successful login.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpireTime  string         `json:"expire_time"`
	User        LoginUserClaim `json:"user"`
}

// LoginUserClaim echoes the identity embedded in the issued token.
type LoginUserClaim struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Login handles POST /v1/login. Credentials arrive as form fields; the
// username field accepts either a username or an email.
func (s *Server) Login(c *fiber.Ctx) error {
	identifier := c.FormValue("username")
	password := c.FormValue("password")
	if identifier == "" || password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	issued, err := s.authService.Authenticate(c.UserContext(), identifier, password)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(LoginResponse{
		AccessToken: issued.AccessToken,
		TokenType:   issued.TokenType,
		ExpireTime:  issued.ExpireTime.UTC().Format(time.RFC3339),
		User: LoginUserClaim{
			ID:       issued.Claim.UserID,
			Username: issued.Claim.Username,
		},
	})
}

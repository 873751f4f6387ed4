package server

import (
	"io"
	"time"

	"visage/internal/models"
	"visage/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PictureResponse is the wire shape of a profile picture.
type PictureResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uint      `json:"user_id"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func pictureResponse(pic *models.ProfilePicture) PictureResponse {
	return PictureResponse{
		ID:         pic.ID,
		UserID:     pic.UserID,
		URL:        "/media/" + pic.Path,
		UploadedAt: pic.UploadedAt,
	}
}

// UploadProfilePicture handles POST /v1/users/profile-pictures.
func (s *Server) UploadProfilePicture(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	pic, err := s.pictureService.Upload(c.UserContext(), service.UploadPictureInput{
		UserID:      currentUserID(c),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(pictureResponse(pic))
}

// GetProfilePicture handles GET /v1/users/profile-pictures/:id.
func (s *Server) GetProfilePicture(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid profile picture ID"))
	}

	pic, err := s.pictureService.GetByID(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(pictureResponse(pic))
}

// DeleteProfilePicture handles DELETE /v1/users/profile-pictures.
func (s *Server) DeleteProfilePicture(c *fiber.Ctx) error {
	if err := s.pictureService.DeleteActive(c.UserContext(), currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package service

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"visage/internal/middleware"
	"visage/internal/models"
	"visage/internal/repository"
	"visage/internal/storage"

	"github.com/google/uuid"
)

// MaxPictureBytes is the upload size ceiling for profile pictures.
const MaxPictureBytes = 2 * 1024 * 1024

// blobPrefix namespaces profile-picture blobs inside the blob store.
const blobPrefix = "pfp"

// allowedPictureTypes maps accepted content types to the fallback extension
// used when the uploaded filename has none.
var allowedPictureTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// PictureService implements profile-picture upload, replacement, and removal.
type PictureService struct {
	pics  repository.PictureRepository
	blobs storage.BlobStore
}

type UploadPictureInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

func NewPictureService(pics repository.PictureRepository, blobs storage.BlobStore) *PictureService {
	return &PictureService{pics: pics, blobs: blobs}
}

// Upload validates and stores a new profile picture, replacing the account's
// current one. Ordering: the new blob is written first, then one transaction
// retires the old record and inserts the new one, then the old blob is
// removed. A blob write failure therefore commits nothing, and no moment
// leaves two active records for one account.
func (s *PictureService) Upload(ctx context.Context, in UploadPictureInput) (*models.ProfilePicture, error) {
	fallbackExt, ok := allowedPictureTypes[normalizeContentType(in.ContentType)]
	if !ok {
		return nil, models.NewUnsupportedMediaTypeError("File must be a JPEG, PNG, or GIF image")
	}
	if len(in.Content) > MaxPictureBytes {
		return nil, models.NewPayloadTooLargeError("File must not exceed 2MB")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("Uploaded file is empty")
	}

	id := uuid.New()
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if ext == "" {
		ext = fallbackExt
	}
	key := blobPrefix + "/" + id.String() + ext

	if err := s.blobs.Save(key, in.Content); err != nil {
		return nil, models.NewStorageError(err)
	}

	pic := &models.ProfilePicture{
		ID:         id,
		UserID:     in.UserID,
		Path:       key,
		UploadedAt: time.Now().UTC(),
	}
	old, err := s.pics.ReplaceActive(ctx, in.UserID, pic)
	if err != nil {
		// Roll the orphaned blob back; nothing references it.
		if rmErr := s.blobs.Remove(key); rmErr != nil {
			middleware.Logger.Warn("failed to remove orphaned blob", "key", key, "error", rmErr)
		}
		return nil, err
	}

	if old != nil {
		if rmErr := s.blobs.Remove(old.Path); rmErr != nil {
			middleware.Logger.Warn("failed to remove replaced blob", "key", old.Path, "error", rmErr)
		}
	}
	return pic, nil
}

// DeleteActive removes the account's active profile picture: the blob is
// deleted first, then the record is soft-deleted. A failed blob delete leaves
// the record untouched.
func (s *PictureService) DeleteActive(ctx context.Context, userID uint) error {
	active, err := s.pics.GetActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if active == nil {
		return models.NewNotFoundError("Profile picture for user", userID)
	}

	if err := s.blobs.Remove(active.Path); err != nil {
		return models.NewStorageError(err)
	}
	return s.pics.SoftDelete(ctx, active.ID)
}

// GetByID returns a picture record by its identifier.
func (s *PictureService) GetByID(ctx context.Context, id uuid.UUID) (*models.ProfilePicture, error) {
	return s.pics.GetByID(ctx, id)
}

func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

package repository

import (
	"context"
	"errors"
	"time"

	"visage/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PictureRepository defines persistence operations for profile pictures.
//
// GetActiveByUserID returns (nil, nil) when the account has no active
// picture. ReplaceActive soft-deletes the current active row (if any) and
// inserts the new one inside a single transaction, so concurrent readers
// never observe two active rows for one account.
type PictureRepository interface {
	Create(ctx context.Context, pic *models.ProfilePicture) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProfilePicture, error)
	GetActiveByUserID(ctx context.Context, userID uint) (*models.ProfilePicture, error)
	ReplaceActive(ctx context.Context, userID uint, pic *models.ProfilePicture) (*models.ProfilePicture, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type pictureRepository struct {
	db *gorm.DB
}

// NewPictureRepository returns a new PictureRepository implementation.
func NewPictureRepository(db *gorm.DB) PictureRepository {
	return &pictureRepository{db: db}
}

func (r *pictureRepository) Create(ctx context.Context, pic *models.ProfilePicture) error {
	if err := r.db.WithContext(ctx).Create(pic).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID retrieves a picture by its identifier. Soft-deleted rows are not
// retrievable: their blobs are already gone.
func (r *pictureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProfilePicture, error) {
	var pic models.ProfilePicture
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&pic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile picture", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &pic, nil
}

func (r *pictureRepository) GetActiveByUserID(ctx context.Context, userID uint) (*models.ProfilePicture, error) {
	var pic models.ProfilePicture
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		First(&pic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &pic, nil
}

// ReplaceActive atomically retires the current active picture and inserts the
// new one. It returns the retired picture so the caller can remove its blob
// after the transaction commits.
func (r *pictureRepository) ReplaceActive(ctx context.Context, userID uint, pic *models.ProfilePicture) (*models.ProfilePicture, error) {
	var old *models.ProfilePicture

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ProfilePicture
		err := tx.Where("user_id = ? AND is_deleted = ?", userID, false).
			First(&current).Error
		switch {
		case err == nil:
			now := time.Now().UTC()
			if err := tx.Model(&current).
				Updates(map[string]interface{}{"is_deleted": true, "deleted_at": now}).Error; err != nil {
				return err
			}
			old = &current
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first upload for this account
		default:
			return err
		}

		return tx.Create(pic).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return old, nil
}

func (r *pictureRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.ProfilePicture{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": now})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Profile picture", id)
	}
	return nil
}

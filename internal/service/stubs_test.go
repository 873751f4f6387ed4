package service

import (
	"context"
	"errors"
	"testing"

	"visage/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub implements repository.UserRepository with overridable funcs.
type userRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	createFn        func(ctx context.Context, user *models.User) error
	updateFn        func(ctx context.Context, user *models.User) error
	deleteFn        func(ctx context.Context, id uint) error
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// pictureRepoStub implements repository.PictureRepository.
type pictureRepoStub struct {
	createFn            func(ctx context.Context, pic *models.ProfilePicture) error
	getByIDFn           func(ctx context.Context, id uuid.UUID) (*models.ProfilePicture, error)
	getActiveByUserIDFn func(ctx context.Context, userID uint) (*models.ProfilePicture, error)
	replaceActiveFn     func(ctx context.Context, userID uint, pic *models.ProfilePicture) (*models.ProfilePicture, error)
	softDeleteFn        func(ctx context.Context, id uuid.UUID) error
}

func noopPictureRepo() *pictureRepoStub {
	return &pictureRepoStub{
		createFn: func(_ context.Context, _ *models.ProfilePicture) error { return nil },
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.ProfilePicture, error) {
			return nil, models.NewNotFoundError("Profile picture", id)
		},
		getActiveByUserIDFn: func(_ context.Context, _ uint) (*models.ProfilePicture, error) {
			return nil, nil
		},
		replaceActiveFn: func(_ context.Context, _ uint, _ *models.ProfilePicture) (*models.ProfilePicture, error) {
			return nil, nil
		},
		softDeleteFn: func(_ context.Context, _ uuid.UUID) error { return nil },
	}
}

func (s *pictureRepoStub) Create(ctx context.Context, pic *models.ProfilePicture) error {
	return s.createFn(ctx, pic)
}

func (s *pictureRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.ProfilePicture, error) {
	return s.getByIDFn(ctx, id)
}

func (s *pictureRepoStub) GetActiveByUserID(ctx context.Context, userID uint) (*models.ProfilePicture, error) {
	return s.getActiveByUserIDFn(ctx, userID)
}

func (s *pictureRepoStub) ReplaceActive(ctx context.Context, userID uint, pic *models.ProfilePicture) (*models.ProfilePicture, error) {
	return s.replaceActiveFn(ctx, userID, pic)
}

func (s *pictureRepoStub) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.softDeleteFn(ctx, id)
}

// blobStoreStub is an in-memory storage.BlobStore that records operations.
type blobStoreStub struct {
	blobs   map[string][]byte
	saveErr error
	removed []string
}

func newBlobStoreStub() *blobStoreStub {
	return &blobStoreStub{blobs: map[string][]byte{}}
}

func (s *blobStoreStub) Save(key string, data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.blobs[key] = data
	return nil
}

func (s *blobStoreStub) Remove(key string) error {
	delete(s.blobs, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *blobStoreStub) Exists(key string) bool {
	_, ok := s.blobs[key]
	return ok
}

func assertErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

package service

import (
	"context"

	"visage/internal/crypto"
	"visage/internal/models"
	"visage/internal/repository"
	"visage/internal/validation"
)

// UserService implements registration and the account mutation rules.
type UserService struct {
	users repository.UserRepository
	pics  repository.PictureRepository
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

func NewUserService(users repository.UserRepository, pics repository.PictureRepository) *UserService {
	return &UserService{users: users, pics: pics}
}

// Register creates an account. The username conflict check runs before the
// email check, so a request that collides on both reports the username. The
// pre-checks only produce friendlier errors: the unique indexes are the
// correctness backstop, and a lost race surfaces as the same conflict via the
// repository's remapping.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already registered")
	}
	existing, err = s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    in.Email,
		Username: in.Username,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns the public view of an account with its active profile
// picture attached when one exists.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := user.Public()
	pic, err := s.pics.GetActiveByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	view.ProfilePicture = pic
	return view, nil
}

// UpdateUsername changes the account's username. Submitting the current
// username is a conflict, not a no-op.
func (s *UserService) UpdateUsername(ctx context.Context, id uint, newUsername string) (*models.User, error) {
	if err := validation.ValidateUsername(newUsername); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Username == newUsername {
		return nil, models.NewConflictError("New username matches the current username")
	}

	existing, err := s.users.GetByUsername(ctx, newUsername)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already registered")
	}

	user.Username = newUsername
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword rehashes and stores a new password after verifying the old
// one. The same-password check compares plaintexts before hashing; comparing
// digests would never match because of salting.
func (s *UserService) UpdatePassword(ctx context.Context, id uint, oldPassword, newPassword string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !crypto.VerifyPassword(oldPassword, user.Password) {
		return nil, models.NewUnauthorizedError("Incorrect password")
	}
	if oldPassword == newPassword {
		return nil, models.NewConflictError("New password matches the current password")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Password = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete soft-deletes the account after verifying the password. The row is
// retained with its deletion timestamp, so the email and username stay
// reserved.
func (s *UserService) Delete(ctx context.Context, id uint, password string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !crypto.VerifyPassword(password, user.Password) {
		return models.NewUnauthorizedError("Incorrect password")
	}
	return s.users.Delete(ctx, id)
}

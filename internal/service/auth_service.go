// Package service implements the business rules on top of the repositories.
package service

import (
	"context"

	"visage/internal/crypto"
	"visage/internal/models"
	"visage/internal/repository"
	"visage/internal/token"
)

// AuthService authenticates credentials and issues session tokens.
type AuthService struct {
	users repository.UserRepository
	codec *token.Codec
}

func NewAuthService(users repository.UserRepository, codec *token.Codec) *AuthService {
	return &AuthService{users: users, codec: codec}
}

// Authenticate verifies an identifier/password pair and issues a session
// token. The identifier is tried as a username first, then as an email.
// Every failure mode returns the same error so the response never reveals
// whether the account exists or which check failed.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*token.Token, error) {
	user, err := s.users.GetByUsername(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.GetByEmail(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}
	if user == nil || !crypto.VerifyPassword(password, user.Password) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	issued, err := s.codec.Issue(token.Claim{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

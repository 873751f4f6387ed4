package service

import (
	"context"
	"testing"

	"visage/internal/crypto"
	"visage/internal/models"
	"visage/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec("test-secret-for-auth-service", "HS256", 30)
	require.NoError(t, err)
	return codec
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	password := "Sup3rS3cret@"
	account := &models.User{ID: 7, Username: "gopher", Email: "gopher@example.com"}
	account.Password = hashFor(t, password)

	t.Run("by username", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			if username == "gopher" {
				return account, nil
			}
			return nil, nil
		}
		svc := NewAuthService(repo, testCodec(t))

		issued, err := svc.Authenticate(context.Background(), "gopher", password)
		require.NoError(t, err)
		assert.NotEmpty(t, issued.AccessToken)
		assert.Equal(t, "Bearer", issued.TokenType)
		assert.Equal(t, uint(7), issued.Claim.UserID)
		assert.Equal(t, "gopher", issued.Claim.Username)
	})

	t.Run("falls back to email", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
			if email == "gopher@example.com" {
				return account, nil
			}
			return nil, nil
		}
		svc := NewAuthService(repo, testCodec(t))

		issued, err := svc.Authenticate(context.Background(), "gopher@example.com", password)
		require.NoError(t, err)
		assert.Equal(t, uint(7), issued.Claim.UserID)
	})

	t.Run("issued token verifies", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return account, nil
		}
		codec := testCodec(t)
		svc := NewAuthService(repo, codec)

		issued, err := svc.Authenticate(context.Background(), "gopher", password)
		require.NoError(t, err)

		claim, err := codec.Verify(issued.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, issued.Claim, *claim)
	})
}

// Bad password and unknown identifier must be indistinguishable to a caller.
func TestAuthService_Authenticate_UniformFailure(t *testing.T) {
	t.Parallel()

	password := "Sup3rS3cret@"
	account := &models.User{ID: 7, Username: "gopher"}
	account.Password = hashFor(t, password)

	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "gopher" {
			return account, nil
		}
		return nil, nil
	}
	svc := NewAuthService(repo, testCodec(t))

	_, wrongPassErr := svc.Authenticate(context.Background(), "gopher", "WrongPass1@")
	_, noAccountErr := svc.Authenticate(context.Background(), "stranger", password)

	wrongPass := assertErrorCode(t, wrongPassErr, models.CodeUnauthorized)
	noAccount := assertErrorCode(t, noAccountErr, models.CodeUnauthorized)
	assert.Equal(t, wrongPass.Message, noAccount.Message)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightform/internal/model"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	auth := NewAuthService(users, "test-secret", time.Hour)

	t.Run("Register", func(t *testing.T) {
		resp, err := auth.Register(ctx, &model.RegisterRequest{Name: "Ada", Email: " Ada@Example.com ", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)

		stored := users.users[resp.UserID]
		require.NotNil(t, stored)
		assert.Equal(t, "ada@example.com", stored.Email)
		assert.NotEqual(t, "correct-horse", stored.PasswordHash)

		claims, err := auth.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.UserID, claims.UserID)
	})

	t.Run("Register rejects duplicates and weak input", func(t *testing.T) {
		_, err := auth.Register(ctx, &model.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "another-pass"})
		assert.ErrorIs(t, err, ErrEmailTaken)

		_, err = auth.Register(ctx, &model.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "short"})
		assert.ErrorIs(t, err, ErrInvalidSignup)

		_, err = auth.Register(ctx, &model.RegisterRequest{Name: "Bob", Email: "not-an-email", Password: "long-enough"})
		assert.ErrorIs(t, err, ErrInvalidSignup)
	})

	t.Run("Login", func(t *testing.T) {
		resp, err := auth.Login(ctx, "ada@example.com", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)

		_, err = auth.Login(ctx, "ada@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = auth.Login(ctx, "nobody@example.com", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("ValidateToken", func(t *testing.T) {
		_, err := auth.ValidateToken("garbage")
		assert.ErrorIs(t, err, ErrInvalidToken)

		other := NewAuthService(users, "other-secret", time.Hour)
		resp, err := other.Login(ctx, "ada@example.com", "correct-horse")
		require.NoError(t, err)
		_, err = auth.ValidateToken(resp.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)

		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.UserClaims{
			UserID: "user_x",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		signed, err := expired.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = auth.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

package services

import (
	"context"
	"testing"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/config"
	"epersmip-backend/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "development",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

type authFixture struct {
	svc    *AuthService
	users  *fakeUserRepo
	tokens *fakeRefreshTokenRepo
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  newFakeUserRepo(),
		tokens: newFakeRefreshTokenRepo(),
	}
	f.svc = NewAuthService(f.users, f.tokens, testConfig())
	return f
}

func (f *authFixture) seedAccount(t *testing.T, email, nim, plain string, active bool) *models.User {
	t.Helper()
	hashed, err := password.Hash(plain)
	require.NoError(t, err)
	return f.users.add(&models.User{
		FullName: "Andi Mahasiswa",
		Email:    email,
		Nim:      &nim,
		Password: hashed,
		Role:     "user",
		IsActive: active,
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active student account", func(t *testing.T) {
		f := newAuthFixture()

		resp, err := f.svc.Register(ctx, &RegisterInput{
			FullName: "Andi Mahasiswa",
			Email:    "andi@unhas.ac.id",
			Nim:      "H071211001",
			Password: "rahasia123",
		})
		require.NoError(t, err)
		assert.Equal(t, "user", resp.Role)
		assert.True(t, resp.IsActive)

		stored, err := f.users.GetByEmail(ctx, "andi@unhas.ac.id")
		require.NoError(t, err)
		assert.True(t, password.Verify("rahasia123", stored.Password))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		f := newAuthFixture()
		f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", true)

		_, err := f.svc.Register(ctx, &RegisterInput{
			FullName: "Andi Kedua",
			Email:    "andi@unhas.ac.id",
			Nim:      "H071211002",
			Password: "rahasia123",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects duplicate NIM", func(t *testing.T) {
		f := newAuthFixture()
		f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", true)

		_, err := f.svc.Register(ctx, &RegisterInput{
			FullName: "Andi Kedua",
			Email:    "andi2@unhas.ac.id",
			Nim:      "H071211001",
			Password: "rahasia123",
		})
		assert.ErrorIs(t, err, ErrNimTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tokens and stores the refresh token", func(t *testing.T) {
		f := newAuthFixture()
		user := f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", true)

		resp, err := f.svc.Login(ctx, &LoginInput{Username: "andi@unhas.ac.id", Password: "rahasia123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, user.ID, resp.User.ID)

		stored, err := f.tokens.GetByTokenHash(ctx, password.HashToken(resp.RefreshToken))
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.UserID)
		assert.False(t, stored.IsRevoked())
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()

		_, err := f.svc.Login(ctx, &LoginInput{Username: "nobody@unhas.ac.id", Password: "rahasia123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", true)

		_, err := f.svc.Login(ctx, &LoginInput{Username: "andi@unhas.ac.id", Password: "salah"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		f := newAuthFixture()
		f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", false)

		_, err := f.svc.Login(ctx, &LoginInput{Username: "andi@unhas.ac.id", Password: "rahasia123"})
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token", func(t *testing.T) {
		f := newAuthFixture()
		f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", true)

		login, err := f.svc.Login(ctx, &LoginInput{Username: "andi@unhas.ac.id", Password: "rahasia123"})
		require.NoError(t, err)

		refreshed, err := f.svc.RefreshToken(ctx, login.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

		// The old token is revoked and cannot be replayed
		old, err := f.tokens.GetByTokenHash(ctx, password.HashToken(login.RefreshToken))
		require.NoError(t, err)
		assert.True(t, old.IsRevoked())

		_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture()

		_, err := f.svc.RefreshToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("deactivated user cannot refresh", func(t *testing.T) {
		f := newAuthFixture()
		user := f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", true)

		login, err := f.svc.Login(ctx, &LoginInput{Username: "andi@unhas.ac.id", Password: "rahasia123"})
		require.NoError(t, err)

		user.IsActive = false

		_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("logout revokes the presented token", func(t *testing.T) {
		f := newAuthFixture()
		f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", true)

		login, err := f.svc.Login(ctx, &LoginInput{Username: "andi@unhas.ac.id", Password: "rahasia123"})
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(ctx, login.RefreshToken))

		_, err = f.svc.RefreshToken(ctx, login.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("logout-all revokes every session", func(t *testing.T) {
		f := newAuthFixture()
		user := f.seedAccount(t, "andi@unhas.ac.id", "H071211001", "rahasia123", true)

		first, err := f.svc.Login(ctx, &LoginInput{Username: "andi@unhas.ac.id", Password: "rahasia123"})
		require.NoError(t, err)
		second, err := f.svc.Login(ctx, &LoginInput{Username: "andi@unhas.ac.id", Password: "rahasia123"})
		require.NoError(t, err)

		require.NoError(t, f.svc.LogoutAll(ctx, user.ID))

		_, err = f.svc.RefreshToken(ctx, first.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
		_, err = f.svc.RefreshToken(ctx, second.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})
}

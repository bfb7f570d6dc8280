package services

import (
	"context"
	"testing"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func seedUserService() (*UserService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewUserService(repo), repo
}

func TestUserService_UpdateUserByAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("demoting the last admin is rejected", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})
		other := repo.add(&models.User{FullName: "Other Admin", Email: "other@unhas.ac.id", Role: "admin", IsActive: true})

		// Two admins: demotion is fine
		_, err := svc.UpdateUserByAdmin(ctx, other.ID, admin.ID, &UpdateUserByAdminInput{Role: strPtr("user")})
		require.NoError(t, err)

		// Now admin is the last one left
		_, err = svc.UpdateUserByAdmin(ctx, admin.ID, other.ID, &UpdateUserByAdminInput{Role: strPtr("user")})
		assert.ErrorIs(t, err, ErrLastAdmin)
	})

	t.Run("deactivating the last admin is rejected", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})
		actor := repo.add(&models.User{FullName: "Student", Email: "s@unhas.ac.id", Role: "user", IsActive: true})

		_, err := svc.UpdateUserByAdmin(ctx, admin.ID, actor.ID, &UpdateUserByAdminInput{IsActive: boolPtr(false)})
		assert.ErrorIs(t, err, ErrLastAdmin)
	})

	t.Run("admins cannot change their own role", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})
		repo.add(&models.User{FullName: "Other", Email: "other@unhas.ac.id", Role: "admin", IsActive: true})

		_, err := svc.UpdateUserByAdmin(ctx, admin.ID, admin.ID, &UpdateUserByAdminInput{Role: strPtr("user")})
		assert.ErrorIs(t, err, ErrCannotChangeOwnRole)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})
		user := repo.add(&models.User{FullName: "Student", Email: "s@unhas.ac.id", Role: "user", IsActive: true})

		_, err := svc.UpdateUserByAdmin(ctx, user.ID, admin.ID, &UpdateUserByAdminInput{Role: strPtr("mahasiswa")})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("email change collides with existing account", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})
		user := repo.add(&models.User{FullName: "Student", Email: "s@unhas.ac.id", Role: "user", IsActive: true})

		_, err := svc.UpdateUserByAdmin(ctx, user.ID, admin.ID, &UpdateUserByAdminInput{Email: strPtr("admin@unhas.ac.id")})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("promotes a student to admin", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})
		user := repo.add(&models.User{FullName: "Student", Email: "s@unhas.ac.id", Role: "user", IsActive: true})

		updated, err := svc.UpdateUserByAdmin(ctx, user.ID, admin.ID, &UpdateUserByAdminInput{Role: strPtr("admin")})
		require.NoError(t, err)
		assert.Equal(t, "admin", updated.Role)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot delete yourself", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})

		err := svc.DeleteUser(ctx, admin.ID, admin.ID)
		assert.ErrorIs(t, err, ErrCannotDeleteSelf)
	})

	t.Run("cannot delete the last admin", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})
		actor := repo.add(&models.User{FullName: "Student", Email: "s@unhas.ac.id", Role: "user", IsActive: true})

		err := svc.DeleteUser(ctx, admin.ID, actor.ID)
		assert.ErrorIs(t, err, ErrLastAdmin)
	})

	t.Run("deletes a regular user", func(t *testing.T) {
		svc, repo := seedUserService()
		admin := repo.add(&models.User{FullName: "Admin", Email: "admin@unhas.ac.id", Role: "admin", IsActive: true})
		user := repo.add(&models.User{FullName: "Student", Email: "s@unhas.ac.id", Role: "user", IsActive: true})

		require.NoError(t, svc.DeleteUser(ctx, user.ID, admin.ID))

		_, err := svc.GetUser(ctx, user.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	hashed, err := password.Hash("rahasia-lama")
	require.NoError(t, err)

	svc, repo := seedUserService()
	user := repo.add(&models.User{FullName: "Student", Email: "s@unhas.ac.id", Role: "user", IsActive: true, Password: hashed})

	err = svc.ChangePassword(ctx, user.ID, &ChangePasswordInput{OldPassword: "salah", NewPassword: "rahasia-baru"})
	assert.ErrorIs(t, err, ErrOldPasswordWrong)

	err = svc.ChangePassword(ctx, user.ID, &ChangePasswordInput{OldPassword: "rahasia-lama", NewPassword: "rahasia-baru"})
	require.NoError(t, err)
	assert.True(t, password.Verify("rahasia-baru", user.Password))
}

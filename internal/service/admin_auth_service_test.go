package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/testsupport"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

func TestAdminAuthService(t *testing.T) {
	ctx := context.Background()
	users := testsupport.NewAdminUsers()
	signer := utils.NewJWTSigner("test-secret", time.Hour)
	svc := NewAdminAuthService(users, signer)

	created, err := svc.CreateAdmin(ctx, NewAdminInput{
		Email: " Ops@Example.com ", Password: "s3cret-pass", Name: "Ops", Role: models.RoleOperator,
	})
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", created.Email)
	assert.NotEqual(t, "s3cret-pass", created.PasswordHash)

	result, err := svc.Login(ctx, "ops@example.com", "s3cret-pass")
	require.NoError(t, err)
	claims, err := signer.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, models.RoleOperator, claims.Role)

	stored, err := users.GetByEmail(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = svc.Login(ctx, "ops@example.com", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestAdminAuthService_InactiveAccount(t *testing.T) {
	ctx := context.Background()
	users := testsupport.NewAdminUsers()
	require.NoError(t, users.Create(ctx, &models.AdminUser{Email: "off@example.com", PasswordHash: "x", Role: models.RoleViewer}))

	_, err := NewAdminAuthService(users, utils.NewJWTSigner("s", time.Hour)).Login(ctx, "off@example.com", "x")
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
}

func TestAdminAuthService_CreateAdminValidation(t *testing.T) {
	svc := NewAdminAuthService(testsupport.NewAdminUsers(), utils.NewJWTSigner("s", time.Hour))

	_, err := svc.CreateAdmin(context.Background(), NewAdminInput{Email: "bad", Password: "short", Name: "X", Role: "root"})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))
	assert.True(t, verr.Has("password"))
	assert.True(t, verr.Has("role"))
	assert.False(t, verr.Has("name"))
}

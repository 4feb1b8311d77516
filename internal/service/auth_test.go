package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func newTestAuthService(t *testing.T) *service.AuthService {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	return &service.AuthService{
		Users:         r,
		Tokens:        r,
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   service.RegisterInput
	}{
		{name: "short username", in: service.RegisterInput{Username: "ab", Email: "ab@example.com", Password: "secret"}},
		{name: "bad email", in: service.RegisterInput{Username: "alice", Email: "alice", Password: "secret"}},
		{name: "short password", in: service.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			require.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, service.RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, tokens.RoleUser, u.Role)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err = svc.Register(ctx, service.RegisterInput{Username: "alice", Email: "new@example.com", Password: "secret"})
	require.ErrorIs(t, err, service.ErrConflict)

	res, err := svc.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, tokens.RoleUser, claims.Role)

	_, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
	require.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = svc.Login(ctx, "bob", "secret")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesAndLogoutRevokes(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{Username: "carol", Email: "carol@example.com", Password: "secret"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, "carol", "secret")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(ctx, login.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefreshToken)
}

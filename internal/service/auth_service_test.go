package service

import (
	"context"
	"testing"

	"shiftly/config"
	"shiftly/internal/auth"
	"shiftly/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authConfig() *config.Config {
	cfg := testConfig()
	cfg.JWT = config.JWTConfig{
		AccessSecret:  "test-access",
		RefreshSecret: "test-refresh",
		AccessExpiry:  900000000000,  // 15m
		RefreshExpiry: 3600000000000, // 1h
		Issuer:        "shiftly-test",
	}
	return cfg
}

func TestRegisterAndLogin(t *testing.T) {
	cfg := authConfig()
	users := newFakeUsers()
	svc := NewAuthService(cfg, users)

	u, access, refresh, err := svc.Register(context.Background(), RegisterInput{
		Email:    "biz@example.com",
		Password: "correct-horse",
		Role:     domain.RoleBusiness,
		FullName: "Biz Owner",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	// The hash never equals the raw password.
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, domain.RoleBusiness, claims.Role)

	_, _, _, err = svc.Login(context.Background(), "biz@example.com", "correct-horse")
	assert.NoError(t, err)
	_, _, _, err = svc.Login(context.Background(), "biz@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRegisterRejectsBadRole(t *testing.T) {
	svc := NewAuthService(authConfig(), newFakeUsers())
	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email: "x@example.com", Password: "p@ssw0rd1", Role: domain.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewAuthService(authConfig(), newFakeUsers())
	in := RegisterInput{
		Email: "w@example.com", Password: "p@ssw0rd1", Role: domain.RoleWorker, FullName: "W",
	}
	_, _, _, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	_, _, _, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cfg := authConfig()
	users := newFakeUsers()
	svc := NewAuthService(cfg, users)
	u, _, refresh, err := svc.Register(context.Background(), RegisterInput{
		Email: "w@example.com", Password: "p@ssw0rd1", Role: domain.RoleWorker, FullName: "W",
	})
	require.NoError(t, err)

	access, _, err := svc.RefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, _, err = svc.RefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

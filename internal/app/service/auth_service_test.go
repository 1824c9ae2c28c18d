package service

import (
	"context"
	"testing"
	"time"

	"github.com/rknair/cloudpuff-backend/config"
	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/rknair/cloudpuff-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, config.JWTConfig{
		Secret:      "test-secret",
		TokenExpiry: time.Hour,
	})
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t)

	result, err := authService.Register("Shopper@Example.COM", "supersecret", "Shopper")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "shopper@example.com", result.User.Email)
	assert.Equal(t, model.RoleUser, result.User.Role)

	claims, err := util.ValidateToken(result.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestAuthService_Register_Validation(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, err := authService.Register("not-an-email", "short", "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "password")
	assert.Contains(t, vErr.Fields, "name")
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, err := authService.Register("shopper@example.com", "supersecret", "Shopper")
	require.NoError(t, err)

	_, err = authService.Register("SHOPPER@example.com", "supersecret", "Clone")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, err := authService.Register("shopper@example.com", "supersecret", "Shopper")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Correct credentials", email: "shopper@example.com", password: "supersecret", wantErr: nil},
		{name: "Case-insensitive email", email: "Shopper@Example.com", password: "supersecret", wantErr: nil},
		{name: "Wrong password", email: "shopper@example.com", password: "wrongpassword", wantErr: ErrInvalidCredentials},
		{name: "Unknown email", email: "nobody@example.com", password: "supersecret", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result.Token)
			}
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	authService := setupAuthServiceTest(t)
	ctx := context.Background()

	// Garbage and empty tokens are absorbed silently
	assert.NoError(t, authService.Logout(ctx, ""))
	assert.NoError(t, authService.Logout(ctx, "not-a-jwt"))

	result, err := authService.Register("shopper@example.com", "supersecret", "Shopper")
	require.NoError(t, err)

	// Valid token logs out cleanly even without a revocation store
	assert.NoError(t, authService.Logout(ctx, result.Token))
}

func TestAuthService_GetProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	result, err := authService.Register("shopper@example.com", "supersecret", "Shopper")
	require.NoError(t, err)

	user, err := authService.GetProfile(result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopper", user.Name)

	_, err = authService.GetProfile(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_CreateAdmin(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, err := authService.CreateAdmin("admin@example.com", "supersecret", "Admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)

	_, err = authService.CreateAdmin("admin@example.com", "supersecret", "Admin Again")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = authService.CreateAdmin("admin2@example.com", "short", "Admin")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rknair/cloudpuff-backend/config"
	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"github.com/rknair/cloudpuff-backend/pkg/redis"
	"github.com/rknair/cloudpuff-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// AuthResult is returned on register and login
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type AuthService interface {
	Register(email, password, name string) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	GetProfile(userID uint) (*model.User, error)
	CreateAdmin(email, password, name string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *authService) Register(email, password, name string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Info("Registering user", map[string]interface{}{
		"email": email,
	})

	fields := make(map[string]string)
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailExists
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *authService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"email": email,
		})
		return nil, ErrInvalidCredentials
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return s.issueToken(user)
}

// Logout blacklists the presented token for the rest of its lifetime
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := util.ValidateToken(token, s.jwtCfg.Secret)
	if err != nil {
		// Expired or invalid tokens need no blacklisting
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	return redis.BlacklistToken(ctx, token, remaining)
}

func (s *authService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateAdmin provisions an admin account, used by the bootstrap command
func (s *authService) CreateAdmin(email, password, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailExists
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         model.RoleAdmin,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("Admin account created", map[string]interface{}{
		"email": email,
	})
	return user, nil
}

func (s *authService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtCfg.Secret, s.jwtCfg.TokenExpiry)
	if err != nil {
		logger.Error("Failed to issue token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/config"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
	cfg         *config.Config
}

func NewAuthController(authService service.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{
		authService: authService,
		cfg:         cfg,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// setAuthCookie issues the session as an HTTP-only cookie. Secure is
// tied to the environment so local development over plain HTTP works.
func (ctrl *AuthController) setAuthCookie(c *gin.Context, token string) {
	secure := ctrl.cfg.Server.Environment == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AuthCookieName,
		token,
		int(ctrl.cfg.JWT.TokenExpiry.Seconds()),
		"/",
		"",
		secure,
		true,
	)
}

func (ctrl *AuthController) clearAuthCookie(c *gin.Context) {
	secure := ctrl.cfg.Server.Environment == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", secure, true)
}

// Register creates a user account and logs it in
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid register request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	result, err := ctrl.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			apperrors.RespondWithValidationError(c, vErr.Fields)
			return
		}
		if errors.Is(err, service.ErrEmailExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "This email is already registered")
			return
		}
		log.Error("Failed to register user", err, nil)
		info := apperrors.ParseError(err, "create user")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	ctrl.setAuthCookie(c, result.Token)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    result.User,
		"token":   result.Token,
	})
}

// Login authenticates a user and issues the session cookie
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and password are required")
		return
	}

	result, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	ctrl.setAuthCookie(c, result.Token)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    result.User,
		"token":   result.Token,
	})
}

// Logout revokes the current session
// POST /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, _ := c.Cookie(middleware.AuthCookieName)
	if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
		// Cookie is cleared either way; revocation failure is logged only
		log.Warn("Failed to blacklist session token", map[string]interface{}{
			"error": err.Error(),
		})
	}

	ctrl.clearAuthCookie(c)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

// GetMe returns the authenticated user's profile
// GET /api/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

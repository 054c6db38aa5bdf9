package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dkushnir/lavka-backend/internal/app/service"
	apperrors "github.com/dkushnir/lavka-backend/internal/errors"
	"github.com/dkushnir/lavka-backend/internal/middleware"
	"github.com/dkushnir/lavka-backend/pkg/redis"
	"github.com/dkushnir/lavka-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
	jwtSecret   string
}

func NewAuthController(authService service.AuthService, jwtSecret string) *AuthController {
	return &AuthController{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Email           string `json:"email"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Register creates a new customer account
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "username, phone and password are required")
		return
	}

	user, tokens, err := ctrl.authService.Register(service.RegisterInput{
		Username:        req.Username,
		Phone:           req.Phone,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		ctrl.respondRegisterError(c, err)
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

func (ctrl *AuthController) respondRegisterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrPasswordTooShort),
		errors.Is(err, util.ErrPasswordNoUpper),
		errors.Is(err, util.ErrPasswordNoLower),
		errors.Is(err, util.ErrPasswordNoDigit):
		// The rule-specific message goes straight to the client
		apperrors.BadRequest(c, apperrors.ValidationPasswordWeak, err.Error())
	case errors.Is(err, service.ErrPasswordMismatch):
		apperrors.BadRequest(c, apperrors.ValidationPasswordMismatch, "Passwords do not match")
	case errors.Is(err, service.ErrInvalidPhone):
		apperrors.BadRequest(c, apperrors.ValidationPhoneInvalid, "Invalid phone number")
	case errors.Is(err, service.ErrInvalidEmail):
		apperrors.BadRequest(c, apperrors.ValidationEmailInvalid, "Invalid email address")
	case errors.Is(err, service.ErrUsernameTooShort):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Username must be at least 2 characters")
	case errors.Is(err, service.ErrUsernameTaken):
		apperrors.Conflict(c, apperrors.AuthUsernameExists, "Username is already taken")
	case errors.Is(err, service.ErrPhoneTaken):
		apperrors.Conflict(c, apperrors.AuthPhoneExists, "Phone number is already registered")
	case errors.Is(err, service.ErrEmailTaken):
		apperrors.Conflict(c, apperrors.AuthEmailExists, "Email is already registered")
	default:
		apperrors.InternalError(c, "Registration failed")
	}
}

// Login authenticates by phone, email or username
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "identifier and password are required")
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid credentials")
			return
		}
		log.Error("Login failed", err, nil)
		apperrors.InternalError(c, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	user, err := ctrl.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		apperrors.InternalError(c, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout revokes the presented access token for the rest of its
// lifetime. Without Redis the token simply ages out.
// POST /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" || token == authHeader {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	claims, err := util.ValidateToken(token, ctrl.jwtSecret)
	if err == nil && claims.ExpiresAt != nil {
		remaining := time.Until(claims.ExpiresAt.Time)
		if remaining > 0 {
			if err := redis.BlacklistToken(c.Request.Context(), token, remaining); err != nil {
				log.Warn("Failed to blacklist token on logout", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

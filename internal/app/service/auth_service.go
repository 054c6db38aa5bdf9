package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"github.com/dkushnir/lavka-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrPhoneTaken         = errors.New("phone number is already registered")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUsernameTooShort   = errors.New("username must be at least 2 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

type RegisterInput struct {
	Username        string
	Phone           string
	Email           string
	Password        string
	PasswordConfirm string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, *util.TokenPair, error)
	Login(identifier, password string) (*model.User, *util.TokenPair, error)
	GetProfile(userID uint) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   *config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg *config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *authService) Register(input RegisterInput) (*model.User, *util.TokenPair, error) {
	logger.Info("Registering new user", map[string]interface{}{
		"username": input.Username,
	})

	username := strings.TrimSpace(input.Username)
	if utf8.RuneCountInString(username) < 2 {
		return nil, nil, ErrUsernameTooShort
	}

	phone := util.NormalizePhone(input.Phone)
	if !util.ValidPhone(phone) {
		logger.Warn("Registration rejected: invalid phone", map[string]interface{}{
			"username": username,
		})
		return nil, nil, ErrInvalidPhone
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email != "" && !strings.Contains(email, "@") {
		return nil, nil, ErrInvalidEmail
	}

	if input.PasswordConfirm != input.Password {
		return nil, nil, ErrPasswordMismatch
	}

	// Password rules produce distinct errors so that the client can show
	// the user which rule failed.
	if err := util.ValidatePassword(input.Password); err != nil {
		logger.Warn("Registration rejected: weak password", map[string]interface{}{
			"username": username,
			"reason":   err.Error(),
		})
		return nil, nil, err
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	if _, err := s.userRepo.FindByPhone(phone); err == nil {
		return nil, nil, ErrPhoneTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	if email != "" {
		if _, err := s.userRepo.FindByEmail(email); err == nil {
			return nil, nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, nil, err
	}

	user := &model.User{
		Username:     username,
		Phone:        phone,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if email != "" {
		user.Email = &email
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user", err, map[string]interface{}{
			"username": username,
		})
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, tokens, nil
}

// Login accepts a phone number, email or username as the identifier.
// Phones are normalized before lookup so local and international forms
// of the same number both work.
func (s *authService) Login(identifier, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("User login attempt", map[string]interface{}{
		"identifier": identifier,
	})

	identifier = strings.TrimSpace(identifier)

	user, err := s.findByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"identifier": identifier,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to look up user", err, map[string]interface{}{
			"identifier": identifier,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
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

func (s *authService) findByIdentifier(identifier string) (*model.User, error) {
	if strings.Contains(identifier, "@") {
		return s.userRepo.FindByEmail(strings.ToLower(identifier))
	}

	normalized := util.NormalizePhone(identifier)
	if util.ValidPhone(normalized) {
		user, err := s.userRepo.FindByPhone(normalized)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return s.userRepo.FindByUsername(identifier)
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Username,
		string(user.Role),
		s.jwtCfg.Secret,
		s.jwtCfg.AccessTokenExpiry,
		s.jwtCfg.RefreshTokenExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}

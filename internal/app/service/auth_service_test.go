package service

import (
	"testing"
	"time"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/db"
	"github.com/dkushnir/lavka-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	jwtCfg := &config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
	}

	return NewAuthService(repository.NewUserRepository(testDB), jwtCfg), testDB
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:        "newuser",
		Phone:           "0501234567",
		Email:           "new@example.com",
		Password:        "Passw0rd",
		PasswordConfirm: "Passw0rd",
	}
}

func TestAuthService_Register(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, tokens, err := authService.Register(validRegistration())
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "newuser", user.Username)
	// Local phone form stored normalized
	assert.Equal(t, "+380501234567", user.Phone)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "Passw0rd", user.PasswordHash)

	require.NotNil(t, tokens)
	claims, err := util.ValidateToken(tokens.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestAuthService_Register_PasswordRules(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"too short", "Ab1", util.ErrPasswordTooShort},
		{"no uppercase", "password1", util.ErrPasswordNoUpper},
		{"no lowercase", "PASSWORD1", util.ErrPasswordNoLower},
		{"no digit", "Passwordx", util.ErrPasswordNoDigit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration()
			input.Password = tt.password
			input.PasswordConfirm = tt.password
			_, _, err := authService.Register(input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Register_DuplicateFields(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register(validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.Phone = "0671112233"
	dup.Email = "different@example.com"
	_, _, err = authService.Register(dup)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	dup = validRegistration()
	dup.Username = "another"
	dup.Email = "different@example.com"
	_, _, err = authService.Register(dup)
	assert.ErrorIs(t, err, ErrPhoneTaken)

	dup = validRegistration()
	dup.Username = "another"
	dup.Phone = "0671112233"
	_, _, err = authService.Register(dup)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Register_InvalidPhone(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	input := validRegistration()
	input.Phone = "12345"
	_, _, err := authService.Register(input)
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestAuthService_Register_ShortUsername(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	input := validRegistration()
	input.Username = "x"
	_, _, err := authService.Register(input)
	assert.ErrorIs(t, err, ErrUsernameTooShort)
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	input := validRegistration()
	input.PasswordConfirm = "Different1"
	_, _, err := authService.Register(input)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	// An omitted confirmation counts as a mismatch too
	input.PasswordConfirm = ""
	_, _, err = authService.Register(input)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	// Matching confirmation goes through
	input.PasswordConfirm = input.Password
	_, _, err = authService.Register(input)
	assert.NoError(t, err)
}

func TestAuthService_Login_ByEachIdentifier(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	registered, _, err := authService.Register(validRegistration())
	require.NoError(t, err)

	// Username, email, normalized phone and the raw local phone form all
	// resolve to the same account.
	for _, identifier := range []string{"newuser", "new@example.com", "+380501234567", "0501234567"} {
		user, tokens, err := authService.Login(identifier, "Passw0rd")
		require.NoError(t, err, identifier)
		assert.Equal(t, registered.ID, user.ID, identifier)
		assert.NotEmpty(t, tokens.AccessToken, identifier)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register(validRegistration())
	require.NoError(t, err)

	_, _, err = authService.Login("newuser", "WrongPass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Login("ghost", "Passw0rd")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetProfile(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	registered, _, err := authService.Register(validRegistration())
	require.NoError(t, err)

	user, err := authService.GetProfile(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.Username, user.Username)

	_, err = authService.GetProfile(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

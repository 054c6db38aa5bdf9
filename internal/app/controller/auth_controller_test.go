package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/app/service"
	"github.com/dkushnir/lavka-backend/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupAuthControllerTest(t *testing.T) (*AuthController, *gin.Engine) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	jwtCfg := &config.JWTConfig{
		Secret:             testSecret,
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
	}
	authService := service.NewAuthService(repository.NewUserRepository(testDB), jwtCfg)
	controller := NewAuthController(authService, testSecret)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/register", controller.Register)
	router.POST("/api/auth/login", controller.Login)

	return controller, router
}

func registerPayload() gin.H {
	return gin.H{
		"username":         "newuser",
		"phone":            "0501234567",
		"email":            "new@example.com",
		"password":         "Passw0rd",
		"password_confirm": "Passw0rd",
	}
}

func TestAuthController_Register(t *testing.T) {
	_, router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/api/auth/register", registerPayload())
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
			Phone    string `json:"phone"`
		} `json:"user"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.User.ID)
	assert.Equal(t, "+380501234567", resp.User.Phone)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestAuthController_Register_WeakPassword(t *testing.T) {
	_, router := setupAuthControllerTest(t)

	tests := []struct {
		password string
		wantMsg  string
	}{
		{"Ab1", "at least 8 characters"},
		{"password1", "uppercase"},
		{"PASSWORD1", "lowercase"},
		{"Passwordx", "digit"},
	}
	for _, tt := range tests {
		payload := registerPayload()
		payload["password"] = tt.password
		payload["password_confirm"] = tt.password
		w := postJSON(t, router, "/api/auth/register", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.password)
		assert.Contains(t, w.Body.String(), "VALIDATION_PASSWORD_WEAK", tt.password)
		assert.Contains(t, w.Body.String(), tt.wantMsg, tt.password)
	}
}

func TestAuthController_Register_PasswordMismatch(t *testing.T) {
	_, router := setupAuthControllerTest(t)

	payload := registerPayload()
	payload["password_confirm"] = "Different1"
	w := postJSON(t, router, "/api/auth/register", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_PASSWORD_MISMATCH")

	delete(payload, "password_confirm")
	w = postJSON(t, router, "/api/auth/register", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_PASSWORD_MISMATCH")
}

func TestAuthController_Register_Duplicates(t *testing.T) {
	_, router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/api/auth/register", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/api/auth/register", registerPayload())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_USERNAME_EXISTS")
}

func TestAuthController_Login(t *testing.T) {
	_, router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/api/auth/register", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	for _, identifier := range []string{"newuser", "new@example.com", "0501234567"} {
		w = postJSON(t, router, "/api/auth/login", gin.H{
			"identifier": identifier,
			"password":   "Passw0rd",
		})
		assert.Equal(t, http.StatusOK, w.Code, identifier)
		assert.Contains(t, w.Body.String(), "access_token", identifier)
	}
}

func TestAuthController_Login_WrongPassword(t *testing.T) {
	_, router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/api/auth/register", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/api/auth/login", gin.H{
		"identifier": "newuser",
		"password":   "WrongPass1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_INVALID_CREDENTIALS")
}

func TestAuthController_Me(t *testing.T) {
	controller, router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/api/auth/register", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	var registered struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	router.GET("/api/auth/me", asUser(registered.User.ID, controller.Me))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "newuser")
}

func TestAuthController_Logout(t *testing.T) {
	controller, router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/api/auth/register", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	var registered struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	router.POST("/api/auth/logout", controller.Logout)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+registered.AccessToken)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "Logged out")
}

func TestAuthController_Logout_NoToken(t *testing.T) {
	controller, router := setupAuthControllerTest(t)

	router.POST("/api/auth/logout", controller.Logout)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

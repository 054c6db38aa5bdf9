package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/app/service"
	"github.com/dkushnir/lavka-backend/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartControllerTest(t *testing.T) (*CartController, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(cartRepo, productRepo)
	cartController := NewCartController(cartService)

	user := &model.User{
		Username:     "testuser",
		Phone:        "+380501234567",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:            "Rose Bouquet",
		Price:           100,
		DiscountPercent: 10,
	}
	testDB.Create(product)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return cartController, router, testDB, user, product
}

// Helper to inject the authenticated user the way the middleware does
func asUser(userID uint, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		handler(c)
	}
}

type cartEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Cart    struct {
		Items []struct {
			ItemID    uint    `json:"item_id"`
			ProductID uint    `json:"product_id"`
			Quantity  int     `json:"quantity"`
			UnitPrice float64 `json:"unit_price"`
			Subtotal  float64 `json:"subtotal"`
		} `json:"items"`
		TotalItems int     `json:"total_items"`
		TotalPrice float64 `json:"total_price"`
	} `json:"cart"`
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	return sendJSON(t, router, http.MethodPost, path, payload)
}

func putJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	return sendJSON(t, router, http.MethodPut, path, payload)
}

func sendJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCartController_AddToCart(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/api/cart/add", asUser(user.ID, controller.AddToCart))

	w := postJSON(t, router, "/api/cart/add", gin.H{"product_id": product.ID, "quantity": 2})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, 2, resp.Cart.Items[0].Quantity)
	assert.Equal(t, 90.0, resp.Cart.Items[0].UnitPrice)
	assert.Equal(t, 180.0, resp.Cart.TotalPrice)
	assert.Equal(t, 2, resp.Cart.TotalItems)
}

func TestCartController_AddToCart_UnknownProduct(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.POST("/api/cart/add", asUser(user.ID, controller.AddToCart))

	w := postJSON(t, router, "/api/cart/add", gin.H{"product_id": 9999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PRODUCT_NOT_FOUND")
}

func TestCartController_AddToCart_MissingProductID(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.POST("/api/cart/add", asUser(user.ID, controller.AddToCart))

	w := postJSON(t, router, "/api/cart/add", gin.H{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_GetCart(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/api/cart/add", asUser(user.ID, controller.AddToCart))
	router.GET("/api/cart/get", asUser(user.ID, controller.GetCart))

	postJSON(t, router, "/api/cart/add", gin.H{"product_id": product.ID, "quantity": 3})

	req := httptest.NewRequest(http.MethodGet, "/api/cart/get", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Cart.TotalItems)
}

func TestCartController_UpdateCartItem(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/api/cart/add", asUser(user.ID, controller.AddToCart))
	router.POST("/api/cart/update", asUser(user.ID, controller.UpdateCartItem))

	w := postJSON(t, router, "/api/cart/add", gin.H{"product_id": product.ID, "quantity": 1})
	var added cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	itemID := added.Cart.Items[0].ItemID

	w = postJSON(t, router, "/api/cart/update", gin.H{"cart_item_id": itemID, "quantity": 5})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Cart.Items[0].Quantity)
}

func TestCartController_UpdateCartItem_RejectsZeroQuantity(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/api/cart/add", asUser(user.ID, controller.AddToCart))
	router.POST("/api/cart/update", asUser(user.ID, controller.UpdateCartItem))

	w := postJSON(t, router, "/api/cart/add", gin.H{"product_id": product.ID, "quantity": 1})
	var added cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	itemID := added.Cart.Items[0].ItemID

	w = postJSON(t, router, "/api/cart/update", gin.H{"cart_item_id": itemID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CART_INVALID_QUANTITY")
}

func TestCartController_RemoveFromCart(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/api/cart/add", asUser(user.ID, controller.AddToCart))
	router.POST("/api/cart/remove", asUser(user.ID, controller.RemoveFromCart))

	w := postJSON(t, router, "/api/cart/add", gin.H{"product_id": product.ID, "quantity": 1})
	var added cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	itemID := added.Cart.Items[0].ItemID

	w = postJSON(t, router, "/api/cart/remove", gin.H{"cart_item_id": itemID})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Cart.Items)
	assert.Equal(t, 0.0, resp.Cart.TotalPrice)
}

func TestCartController_RemoveFromCart_ForeignItem(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)

	other := &model.User{
		Username:     "other",
		Phone:        "+380679876543",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	router.POST("/api/cart/add", asUser(user.ID, controller.AddToCart))
	router.POST("/api/cart/remove", asUser(other.ID, controller.RemoveFromCart))

	w := postJSON(t, router, "/api/cart/add", gin.H{"product_id": product.ID, "quantity": 1})
	var added cartEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	itemID := added.Cart.Items[0].ItemID

	w = postJSON(t, router, "/api/cart/remove", gin.H{"cart_item_id": itemID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CART_ITEM_NOT_FOUND")
}

func TestCartController_Unauthenticated(t *testing.T) {
	controller, router, _, _, _ := setupCartControllerTest(t)

	router.GET("/api/cart/get", controller.GetCart)

	req := httptest.NewRequest(http.MethodGet, "/api/cart/get", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

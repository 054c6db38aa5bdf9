package service

import (
	"testing"

	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *model.User, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo)

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

	return cartService, user, product, testDB
}

func TestCartService_GetCart_EmptyBeforeFirstAdd(t *testing.T) {
	cartService, user, _, _ := setupCartServiceTest(t)

	snap, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Equal(t, 0, snap.TotalItems)
	assert.Equal(t, 0.0, snap.TotalPrice)
}

func TestCartService_AddToCart(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	snap, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, product.ID, snap.Items[0].ProductID)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	// 100 with 10% off
	assert.Equal(t, 90.0, snap.Items[0].UnitPrice)
	assert.Equal(t, 180.0, snap.Items[0].Subtotal)
	assert.Equal(t, 2, snap.TotalItems)
	assert.Equal(t, 180.0, snap.TotalPrice)
}

func TestCartService_AddToCart_SameProductIncrementsQuantity(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	snap, err := cartService.AddToCart(user.ID, product.ID, 3)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, 5, snap.Items[0].Quantity)
	assert.Equal(t, 5, snap.TotalItems)
}

func TestCartService_AddToCart_DefaultsQuantityToOne(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	snap, err := cartService.AddToCart(user.ID, product.ID, 0)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)
}

func TestCartService_AddToCart_UnknownProduct(t *testing.T) {
	cartService, user, _, _ := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	snap, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)
	itemID := snap.Items[0].ItemID

	snap, err = cartService.UpdateQuantity(user.ID, itemID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Items[0].Quantity)
	assert.Equal(t, 7, snap.TotalItems)
}

func TestCartService_UpdateQuantity_RejectsNonPositive(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	snap, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)
	itemID := snap.Items[0].ItemID

	for _, qty := range []int{0, -1} {
		_, err := cartService.UpdateQuantity(user.ID, itemID, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}

	// Quantity must be untouched after the rejected updates
	snap, err = cartService.GetCart(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Items[0].Quantity)
}

func TestCartService_RemoveFromCart(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	snap, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)
	itemID := snap.Items[0].ItemID

	snap, err = cartService.RemoveFromCart(user.ID, itemID)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Equal(t, 0.0, snap.TotalPrice)
}

func TestCartService_ForeignCartItemIsNotFound(t *testing.T) {
	cartService, user, product, testDB := setupCartServiceTest(t)

	snap, err := cartService.AddToCart(user.ID, product.ID, 1)
	require.NoError(t, err)
	itemID := snap.Items[0].ItemID

	other := &model.User{
		Username:     "otheruser",
		Phone:        "+380679876543",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	_, err = cartService.RemoveFromCart(other.ID, itemID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	_, err = cartService.UpdateQuantity(other.ID, itemID, 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, cartService.ClearCart(user.ID))

	snap, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

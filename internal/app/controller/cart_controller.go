package controller

import (
	"errors"
	"net/http"

	"github.com/dkushnir/lavka-backend/internal/app/service"
	apperrors "github.com/dkushnir/lavka-backend/internal/errors"
	"github.com/dkushnir/lavka-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartRequest struct {
	ItemID   uint `json:"cart_item_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

type RemoveFromCartRequest struct {
	ItemID uint `json:"cart_item_id" binding:"required"`
}

// cartResponse is the envelope every cart endpoint answers with, so the
// client can redraw the cart widget from any response.
func cartResponse(c *gin.Context, status int, message string, snap *service.CartSnapshot) {
	body := gin.H{
		"success": status < http.StatusBadRequest,
		"cart":    snap,
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// GetCart returns the current cart state
// GET /api/cart/get
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	snap, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	cartResponse(c, http.StatusOK, "", snap)
}

// AddToCart adds a product or bumps its quantity
// POST /api/cart/add
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "product_id is required")
		return
	}

	snap, err := ctrl.cartService.AddToCart(userID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to add to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "Failed to add item to cart")
		return
	}

	cartResponse(c, http.StatusOK, "Item added to cart", snap)
}

// UpdateCartItem sets an exact quantity on a cart line
// POST /api/cart/update
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "cart_item_id is required")
		return
	}

	snap, err := ctrl.cartService.UpdateQuantity(userID, req.ItemID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "Quantity must be greater than zero")
		case errors.Is(err, service.ErrCartItemNotFound):
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
		default:
			log.Error("Failed to update cart item", err, map[string]interface{}{
				"user_id":      userID,
				"cart_item_id": req.ItemID,
			})
			apperrors.InternalError(c, "Failed to update cart item")
		}
		return
	}

	cartResponse(c, http.StatusOK, "Cart updated", snap)
}

// RemoveFromCart deletes a cart line
// POST /api/cart/remove
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req RemoveFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "cart_item_id is required")
		return
	}

	snap, err := ctrl.cartService.RemoveFromCart(userID, req.ItemID)
	if err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
			return
		}
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": req.ItemID,
		})
		apperrors.InternalError(c, "Failed to remove cart item")
		return
	}

	cartResponse(c, http.StatusOK, "Item removed from cart", snap)
}

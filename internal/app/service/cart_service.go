package service

import (
	"errors"

	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/pricing"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
)

// CartLine is one product row as presented to the client, with the
// discount already applied to the unit price.
type CartLine struct {
	ItemID       uint     `json:"item_id"`
	ProductID    uint     `json:"product_id"`
	Name         string   `json:"name"`
	Preview      string   `json:"preview"`
	UnitPrice    float64  `json:"unit_price"`
	Quantity     int      `json:"quantity"`
	Subtotal     float64  `json:"subtotal"`
	Attributes   []string `json:"attributes"`
	CategoryName string   `json:"category_name,omitempty"`
}

// CartSnapshot is the full cart state returned after every mutation so
// the client never has to recompute totals.
type CartSnapshot struct {
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}

type CartService interface {
	GetCart(userID uint) (*CartSnapshot, error)
	AddToCart(userID, productID uint, quantity int) (*CartSnapshot, error)
	UpdateQuantity(userID, itemID uint, quantity int) (*CartSnapshot, error)
	RemoveFromCart(userID, itemID uint) (*CartSnapshot, error)
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) snapshot(userID uint) (*CartSnapshot, error) {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartSnapshot{Items: []CartLine{}}, nil
		}
		return nil, err
	}

	snap := &CartSnapshot{
		Items:      make([]CartLine, 0, len(cart.Items)),
		TotalItems: pricing.CartItemCount(cart.Items),
		TotalPrice: pricing.CartTotal(cart.Items),
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		line := CartLine{
			ItemID:     item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  pricing.EffectivePrice(&item.Product),
			Subtotal:   pricing.LineSubtotal(item),
			Name:       item.Product.Name,
			Preview:    item.Product.Preview,
			Attributes: item.Product.AttributeList(),
		}
		if item.Product.Category != nil {
			line.CategoryName = item.Product.Category.Name
		}
		snap.Items = append(snap.Items, line)
	}
	return snap, nil
}

func (s *cartService) GetCart(userID uint) (*CartSnapshot, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	snap, err := s.snapshot(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return snap, nil
}

func (s *cartService) AddToCart(userID, productID uint, quantity int) (*CartSnapshot, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		quantity = 1
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	err := s.cartRepo.Transaction(func(txRepo repository.CartRepository) error {
		cart, err := txRepo.FindOrCreateByUserID(userID)
		if err != nil {
			return err
		}

		existing, err := txRepo.FindItemByCartAndProduct(cart.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing != nil {
			existing.Quantity += quantity
			return txRepo.UpdateItem(existing)
		}

		return txRepo.CreateItem(&model.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
	})
	if err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return s.snapshot(userID)
}

func (s *cartService) UpdateQuantity(userID, itemID uint, quantity int) (*CartSnapshot, error) {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	if quantity <= 0 {
		logger.Warn("Rejected non-positive cart quantity", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
			"quantity":     quantity,
		})
		return nil, ErrInvalidQuantity
	}

	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if err := s.cartRepo.UpdateItem(item); err != nil {
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}

	return s.snapshot(userID)
}

func (s *cartService) RemoveFromCart(userID, itemID uint) (*CartSnapshot, error) {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})

	if _, err := s.ownedItem(userID, itemID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(itemID); err != nil {
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}

	return s.snapshot(userID)
}

func (s *cartService) ClearCart(userID uint) error {
	logger.Info("Clearing user cart", map[string]interface{}{
		"user_id": userID,
	})

	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := s.cartRepo.DeleteItemsByCartID(cart.ID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

// ownedItem loads the item and verifies it belongs to the user's cart.
// Items of other users are reported as not found, never as forbidden.
func (s *cartService) ownedItem(userID, itemID uint) (*model.CartItem, error) {
	item, err := s.cartRepo.FindItemByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found", map[string]interface{}{
				"cart_item_id": itemID,
			})
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}

	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	if item.CartID != cart.ID {
		logger.Warn("Cart item access denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": itemID,
		})
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

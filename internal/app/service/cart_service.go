package service

import (
	"errors"

	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/app/repository"
	"github.com/jshan/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

// CartService owns cart lines. All stock checks in here are soft: they
// advise against adding more than is currently sellable but reserve nothing.
// The authoritative check happens again at checkout inside the transaction.
type CartService interface {
	GetUserCart(userID uint) ([]model.CartItem, error)
	AddToCart(userID, productID uint, quantity int) (*model.CartItem, error)
	UpdateCartItem(userID, cartItemID uint, quantity int) (*model.CartItem, error)
	RemoveFromCart(userID, cartItemID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo  repository.CartRepository
	stockRepo repository.StockRepository
}

func NewCartService(cartRepo repository.CartRepository, stockRepo repository.StockRepository) CartService {
	return &cartService{
		cartRepo:  cartRepo,
		stockRepo: stockRepo,
	}
}

// RemovedProductName marks a cart line whose product row no longer exists.
const RemovedProductName = "[no longer available]"

// GetUserCart returns the cart lines in insertion order, each with the live
// product preloaded for display. A line whose product vanished or became
// unavailable is still returned: the user should see what happened to it.
func (s *cartService) GetUserCart(userID uint) ([]model.CartItem, error) {
	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	// A deleted product leaves the preload empty. Substitute a placeholder
	// that keeps the line identifiable and carries no price, so the cart
	// total counts only purchasable lines.
	for i := range cartItems {
		if cartItems[i].Product.ID == 0 {
			logger.Warn("Cart line references a removed product", map[string]interface{}{
				"user_id":      userID,
				"cart_item_id": cartItems[i].ID,
				"product_id":   cartItems[i].ProductID,
			})
			cartItems[i].Product = model.Product{
				ID:        cartItems[i].ProductID,
				Name:      RemovedProductName,
				Available: false,
			}
		}
	}

	logger.Debug("User cart fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(cartItems),
	})
	return cartItems, nil
}

func (s *cartService) AddToCart(userID, productID uint, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	snap, err := s.stockRepo.GetAvailable(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if !snap.Available {
		logger.Warn("Cannot add to cart: product unavailable", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, &ProductUnavailableError{ProductID: productID}
	}

	existingItem, err := s.cartRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	// The line's resulting total is what must fit in the stock snapshot,
	// not just the increment.
	requestedQuantity := quantity
	if existingItem != nil {
		requestedQuantity = existingItem.Quantity + quantity
	}

	if requestedQuantity > snap.Stock {
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  requestedQuantity,
			"available":  snap.Stock,
		})
		return nil, &InsufficientStockError{
			ProductID: productID,
			Requested: requestedQuantity,
			Available: snap.Stock,
		}
	}

	if existingItem != nil {
		existingItem.Quantity = requestedQuantity
		if err := s.cartRepo.Update(existingItem); err != nil {
			return nil, err
		}
		return existingItem, nil
	}

	cartItem := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Create(cartItem); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// Lost the insert race with another session of this user.
			// The unique index guarantees the row now exists; merge into it.
			return s.mergeIntoExistingLine(userID, productID, quantity, snap.Stock)
		}
		return nil, err
	}

	logger.Info("Cart item added", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"user_id":      userID,
	})
	return cartItem, nil
}

// mergeIntoExistingLine folds an increment into the line a concurrent insert
// just created, re-checking the stock snapshot for the merged total.
func (s *cartService) mergeIntoExistingLine(userID, productID uint, quantity, stock int) (*model.CartItem, error) {
	existing, err := s.cartRepo.FindByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	merged := existing.Quantity + quantity
	if merged > stock {
		return nil, &InsufficientStockError{
			ProductID: productID,
			Requested: merged,
			Available: stock,
		}
	}

	existing.Quantity = merged
	if err := s.cartRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *cartService) UpdateCartItem(userID, cartItemID uint, quantity int) (*model.CartItem, error) {
	// Zero is not a shortcut for removal; RemoveFromCart exists for that.
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return nil, err
	}

	if cartItem.UserID != userID {
		logger.Warn("Cart item access denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"owner_id":     cartItem.UserID,
		})
		return nil, ErrCartItemNotFound
	}

	snap, err := s.stockRepo.GetAvailable(cartItem.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if quantity > snap.Stock {
		logger.Warn("Cannot update cart item: insufficient stock", map[string]interface{}{
			"cart_item_id": cartItemID,
			"requested":    quantity,
			"available":    snap.Stock,
		})
		return nil, &InsufficientStockError{
			ProductID: cartItem.ProductID,
			Requested: quantity,
			Available: snap.Stock,
		}
	}

	cartItem.Quantity = quantity
	if err := s.cartRepo.Update(cartItem); err != nil {
		return nil, err
	}

	logger.Info("Cart item updated", map[string]interface{}{
		"cart_item_id": cartItemID,
		"quantity":     quantity,
	})
	return cartItem, nil
}

// RemoveFromCart is idempotent: removing an item that is already gone (or
// was never this user's) is a successful no-op, not an error.
func (s *cartService) RemoveFromCart(userID, cartItemID uint) error {
	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("Cart item already absent on removal", map[string]interface{}{
				"user_id":      userID,
				"cart_item_id": cartItemID,
			})
			return nil
		}
		logger.Error("Failed to fetch cart item for removal", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	if cartItem.UserID != userID {
		// A foreign item is indistinguishable from an absent one.
		return nil
	}

	if err := s.cartRepo.Delete(cartItemID); err != nil {
		return err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	if err := s.cartRepo.DeleteByUserID(userID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("User cart cleared", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

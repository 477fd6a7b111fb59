package service

import (
	"errors"

	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/app/repository"
	"github.com/jshan/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrWishlistItemAlreadyExists = errors.New("product already in wishlist")
	ErrWishlistItemNotFound      = errors.New("wishlist item not found")
)

// WishlistService holds the wishlist and the bridge between wishlist and
// cart. Moves never silently drop an entry: the source row is only deleted
// after the destination write succeeded.
type WishlistService interface {
	GetUserWishlist(userID uint) ([]model.WishlistItem, error)
	AddToWishlist(userID, productID uint) (*model.WishlistItem, error)
	RemoveFromWishlist(userID, productID uint) error
	MoveToCart(userID, wishlistItemID uint) (*model.CartItem, error)
	MoveToWishlist(userID, cartItemID uint) (*model.WishlistItem, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	cartRepo     repository.CartRepository
	stockRepo    repository.StockRepository
	cartService  CartService
	db           *gorm.DB
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	cartRepo repository.CartRepository,
	stockRepo repository.StockRepository,
	cartService CartService,
	db *gorm.DB,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		cartRepo:     cartRepo,
		stockRepo:    stockRepo,
		cartService:  cartService,
		db:           db,
	}
}

func (s *wishlistService) GetUserWishlist(userID uint) ([]model.WishlistItem, error) {
	items, err := s.wishlistRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user wishlist", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("User wishlist fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
	})
	return items, nil
}

func (s *wishlistService) AddToWishlist(userID, productID uint) (*model.WishlistItem, error) {
	logger.Info("Adding item to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	// The wishlist has no stock constraint, but the product must exist.
	if _, err := s.stockRepo.GetAvailable(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.wishlistRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing wishlist item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}
	if existing != nil {
		return nil, ErrWishlistItemAlreadyExists
	}

	item := &model.WishlistItem{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.wishlistRepo.Create(item); err != nil {
		// A concurrent add of the same product trips the unique index
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrWishlistItemAlreadyExists
		}
		return nil, err
	}

	logger.Info("Item added to wishlist", map[string]interface{}{
		"wishlist_item_id": item.ID,
		"user_id":          userID,
		"product_id":       productID,
	})
	return item, nil
}

func (s *wishlistService) RemoveFromWishlist(userID, productID uint) error {
	if _, err := s.wishlistRepo.FindByUserAndProduct(userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWishlistItemNotFound
		}
		return err
	}

	if err := s.wishlistRepo.Delete(userID, productID); err != nil {
		return err
	}

	logger.Info("Item removed from wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return nil
}

// MoveToCart adds one unit of the wishlisted product to the cart and deletes
// the wishlist entry only when that add succeeded. An out-of-stock failure
// leaves the entry exactly where it was and surfaces to the caller.
func (s *wishlistService) MoveToCart(userID, wishlistItemID uint) (*model.CartItem, error) {
	entry, err := s.wishlistRepo.FindByID(wishlistItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistItemNotFound
		}
		return nil, err
	}
	if entry.UserID != userID {
		logger.Warn("Wishlist item access denied: ownership mismatch", map[string]interface{}{
			"user_id":          userID,
			"wishlist_item_id": wishlistItemID,
			"owner_id":         entry.UserID,
		})
		return nil, ErrWishlistItemNotFound
	}

	cartItem, err := s.cartService.AddToCart(userID, entry.ProductID, 1)
	if err != nil {
		logger.Warn("Move to cart blocked, wishlist entry kept", map[string]interface{}{
			"user_id":          userID,
			"wishlist_item_id": wishlistItemID,
			"product_id":       entry.ProductID,
			"reason":           err.Error(),
		})
		return nil, err
	}

	if err := s.wishlistRepo.Delete(userID, entry.ProductID); err != nil {
		// The product made it into the cart; the leftover entry is the
		// lesser evil and the next move attempt will clean it up.
		logger.Error("Failed to delete wishlist entry after move to cart", err, map[string]interface{}{
			"user_id":          userID,
			"wishlist_item_id": wishlistItemID,
		})
		return nil, err
	}

	logger.Info("Wishlist item moved to cart", map[string]interface{}{
		"user_id":      userID,
		"product_id":   entry.ProductID,
		"cart_item_id": cartItem.ID,
	})
	return cartItem, nil
}

// MoveToWishlist creates (or keeps) a wishlist entry for the cart line's
// product and removes the line, atomically. It succeeds whenever the cart
// line exists; the wishlist has no stock constraint.
func (s *wishlistService) MoveToWishlist(userID, cartItemID uint) (*model.WishlistItem, error) {
	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if cartItem.UserID != userID {
		return nil, ErrCartItemNotFound
	}

	var entry *model.WishlistItem
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txWishlist := s.wishlistRepo.WithTx(tx)
		txCart := s.cartRepo.WithTx(tx)

		existing, err := txWishlist.FindByUserAndProduct(userID, cartItem.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			entry = existing
		} else {
			entry = &model.WishlistItem{
				UserID:    userID,
				ProductID: cartItem.ProductID,
			}
			if err := txWishlist.Create(entry); err != nil {
				return err
			}
		}

		return txCart.Delete(cartItemID)
	})
	if err != nil {
		logger.Error("Failed to move cart item to wishlist", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		return nil, err
	}

	logger.Info("Cart item moved to wishlist", map[string]interface{}{
		"user_id":          userID,
		"cart_item_id":     cartItemID,
		"wishlist_item_id": entry.ID,
	})
	return entry, nil
}

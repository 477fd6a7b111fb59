package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jshan/storefront-backend/internal/app/service"
	"github.com/jshan/storefront-backend/internal/errors"
	"github.com/jshan/storefront-backend/internal/middleware"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddToWishlistRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetWishlist returns the user's wishlist
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	items, err := ctrl.wishlistService.GetUserWishlist(userID)
	if err != nil {
		log.Error("Failed to fetch wishlist", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "failed to fetch wishlist")
		return
	}

	log.Info("Wishlist fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
	})

	c.JSON(http.StatusOK, gin.H{
		"wishlist_items": items,
		"count":          len(items),
	})
}

// AddToWishlist saves a product to the wishlist. Quantity and stock play
// no part here; a wishlist entry is a bookmark.
// POST /api/v1/wishlist
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	var req AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to wishlist request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
		return
	}

	entry, err := ctrl.wishlistService.AddToWishlist(userID, req.ProductID)
	if err != nil {
		if stderrors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found for wishlist", map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			errors.NotFound(c, errors.ProductNotFound, "product not found")
			return
		}
		if stderrors.Is(err, service.ErrWishlistItemAlreadyExists) {
			log.Warn("Product already on wishlist", map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			errors.Conflict(c, errors.WishlistItemExists, "product is already on the wishlist")
			return
		}
		log.Error("Failed to add item to wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		errors.InternalError(c, "failed to add item to wishlist")
		return
	}

	log.Info("Item added to wishlist successfully", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Item added to wishlist successfully",
		"wishlist_item": entry,
	})
}

// RemoveFromWishlist removes a product from the wishlist
// DELETE /api/v1/wishlist/:product_id
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	if err := ctrl.wishlistService.RemoveFromWishlist(userID, productID); err != nil {
		if stderrors.Is(err, service.ErrWishlistItemNotFound) {
			log.Warn("Wishlist entry not found for removal", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			errors.NotFound(c, errors.WishlistItemNotFound, "wishlist entry not found")
			return
		}
		log.Error("Failed to remove wishlist entry", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		errors.InternalError(c, "failed to remove wishlist entry")
		return
	}

	log.Info("Wishlist entry removed successfully", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist entry removed successfully",
	})
}

// MoveToCart moves a wishlist entry into the cart with quantity 1. The
// entry survives if the cart rejects the product.
// POST /api/v1/wishlist/:id/move-to-cart
func (ctrl *WishlistController) MoveToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := ctrl.wishlistService.MoveToCart(userID, id)
	if err != nil {
		if stderrors.Is(err, service.ErrWishlistItemNotFound) {
			log.Warn("Wishlist entry not found for move", map[string]interface{}{
				"user_id":          userID,
				"wishlist_item_id": id,
			})
			errors.NotFound(c, errors.WishlistItemNotFound, "wishlist entry not found")
			return
		}

		var stockErr *service.InsufficientStockError
		var unavailableErr *service.ProductUnavailableError
		switch {
		case stderrors.Is(err, service.ErrProductNotFound):
			errors.NotFound(c, errors.ProductNotFound, "product no longer exists")
		case stderrors.As(err, &unavailableErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":      errors.ProductUnavailable,
				"message":    "product is not available",
				"product_id": unavailableErr.ProductID,
			})
		case stderrors.As(err, &stockErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":      errors.StockInsufficient,
				"message":    "not enough stock",
				"product_id": stockErr.ProductID,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			})
		default:
			log.Error("Failed to move wishlist entry to cart", err, map[string]interface{}{
				"user_id":          userID,
				"wishlist_item_id": id,
			})
			errors.InternalError(c, "failed to move item to cart")
		}
		return
	}

	log.Info("Wishlist entry moved to cart", map[string]interface{}{
		"user_id":          userID,
		"wishlist_item_id": id,
		"cart_item_id":     item.ID,
		"product_id":       item.ProductID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Item moved to cart successfully",
		"cart_item": item,
	})
}

package controller

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jshan/storefront-backend/internal/app/service"
	"github.com/jshan/storefront-backend/internal/errors"
	"github.com/jshan/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService     service.CartService
	wishlistService service.WishlistService
}

func NewCartController(cartService service.CartService, wishlistService service.WishlistService) *CartController {
	return &CartController{
		cartService:     cartService,
		wishlistService: wishlistService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// GetCart returns the user's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	cartItems, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "failed to fetch cart")
		return
	}

	var totalCents int64
	for _, item := range cartItems {
		totalCents += item.Product.PriceCents * int64(item.Quantity)
	}

	log.Info("Cart fetched successfully", map[string]interface{}{
		"user_id":     userID,
		"count":       len(cartItems),
		"total_cents": totalCents,
	})

	c.JSON(http.StatusOK, gin.H{
		"cart_items":  cartItems,
		"count":       len(cartItems),
		"total_cents": totalCents,
	})
}

// AddToCart adds a product to the cart
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
		return
	}

	item, err := ctrl.cartService.AddToCart(userID, req.ProductID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err, userID, req.ProductID)
		return
	}

	log.Info("Item added to cart successfully", map[string]interface{}{
		"user_id":      userID,
		"product_id":   req.ProductID,
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Item added to cart successfully",
		"cart_item": item,
	})
}

// UpdateCartItem updates a cart line's quantity
// PUT /api/v1/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
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

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": id,
			"error":        err.Error(),
		})
		errors.BadRequest(c, errors.CartInvalidQuantity, err.Error())
		return
	}

	item, err := ctrl.cartService.UpdateCartItem(userID, id, req.Quantity)
	if err != nil {
		if stderrors.Is(err, service.ErrCartItemNotFound) {
			log.Warn("Cart item not found", map[string]interface{}{
				"user_id":      userID,
				"cart_item_id": id,
			})
			errors.NotFound(c, errors.CartItemNotFound, "cart item not found")
			return
		}
		ctrl.respondCartError(c, err, userID, 0)
		return
	}

	log.Info("Cart item updated successfully", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": id,
		"quantity":     req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Cart item updated successfully",
		"cart_item": item,
	})
}

// RemoveFromCart removes a cart line. Removing a line that is already
// gone succeeds.
// DELETE /api/v1/cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
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

	if err := ctrl.cartService.RemoveFromCart(userID, id); err != nil {
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": id,
		})
		errors.InternalError(c, "failed to remove cart item")
		return
	}

	log.Info("Cart item removed", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item removed successfully",
	})
}

// ClearCart removes every line from the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "failed to clear cart")
		return
	}

	log.Info("Cart cleared successfully", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// MoveToWishlist moves a cart line to the wishlist
// POST /api/v1/cart/:id/move-to-wishlist
func (ctrl *CartController) MoveToWishlist(c *gin.Context) {
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

	entry, err := ctrl.wishlistService.MoveToWishlist(userID, id)
	if err != nil {
		if stderrors.Is(err, service.ErrCartItemNotFound) {
			log.Warn("Cart item not found for move", map[string]interface{}{
				"user_id":      userID,
				"cart_item_id": id,
			})
			errors.NotFound(c, errors.CartItemNotFound, "cart item not found")
			return
		}
		log.Error("Failed to move cart item to wishlist", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": id,
		})
		errors.InternalError(c, "failed to move item to wishlist")
		return
	}

	log.Info("Cart item moved to wishlist", map[string]interface{}{
		"user_id":       userID,
		"cart_item_id":  id,
		"wishlist_id":   entry.ID,
		"product_id":    entry.ProductID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":       "Item moved to wishlist successfully",
		"wishlist_item": entry,
	})
}

// respondCartError maps shared stock/catalog errors onto responses.
func (ctrl *CartController) respondCartError(c *gin.Context, err error, userID, productID uint) {
	log := middleware.GetLoggerFromContext(c)

	var stockErr *service.InsufficientStockError
	var unavailableErr *service.ProductUnavailableError

	switch {
	case stderrors.Is(err, service.ErrProductNotFound):
		log.Warn("Product not found for cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		errors.NotFound(c, errors.ProductNotFound, "product not found")
	case stderrors.As(err, &unavailableErr):
		log.Warn("Product unavailable for cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": unavailableErr.ProductID,
		})
		c.JSON(http.StatusConflict, gin.H{
			"error":      errors.ProductUnavailable,
			"message":    "product is not available",
			"product_id": unavailableErr.ProductID,
		})
	case stderrors.As(err, &stockErr):
		log.Warn("Insufficient stock for cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
		c.JSON(http.StatusConflict, gin.H{
			"error":      errors.StockInsufficient,
			"message":    "not enough stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case stderrors.Is(err, service.ErrInvalidQuantity):
		errors.BadRequest(c, errors.CartInvalidQuantity, "quantity must be at least 1")
	default:
		log.Error("Cart operation failed", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		errors.InternalError(c, "")
	}
}

// parseIDParam parses a numeric path parameter, responding on failure.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

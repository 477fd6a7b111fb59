package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/app/service"
	"github.com/jshan/storefront-backend/internal/errors"
	"github.com/jshan/storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Checkout converts the user's cart into an order
// POST /api/v1/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	order, err := ctrl.orderService.Checkout(userID)
	if err != nil {
		ctrl.respondCheckoutError(c, err, userID)
		return
	}

	log.Info("Checkout succeeded", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_cents": order.TotalCents,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

func (ctrl *OrderController) respondCheckoutError(c *gin.Context, err error, userID uint) {
	log := middleware.GetLoggerFromContext(c)

	var stockErr *service.InsufficientStockError
	var unavailableErr *service.ProductUnavailableError

	switch {
	case stderrors.Is(err, service.ErrEmptyCart):
		log.Warn("Checkout with empty cart", map[string]interface{}{
			"user_id": userID,
		})
		errors.BadRequest(c, errors.CartEmpty, "cart is empty")
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
		})
	case stderrors.Is(err, service.ErrProductNotFound):
		errors.Conflict(c, errors.ProductNotFound, "a cart product no longer exists")
	default:
		log.Error("Checkout failed", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "checkout failed, no charge was made")
	}
}

// GetOrders lists the user's orders, newest first
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns a single order with its lines
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
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

	order, err := ctrl.orderService.GetOrderByID(userID, id)
	if err != nil {
		if stderrors.Is(err, service.ErrOrderNotFound) {
			log.Warn("Order not found", map[string]interface{}{
				"user_id":  userID,
				"order_id": id,
			})
			errors.NotFound(c, errors.OrderNotFound, "order not found")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": id,
		})
		errors.InternalError(c, "failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateOrderStatus moves an order through the fulfillment state machine
// PUT /api/v1/orders/:id/status (admin)
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order status request", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
		return
	}

	newStatus := model.OrderStatus(req.Status)
	if !model.ValidStatus(newStatus) {
		log.Warn("Unknown order status", map[string]interface{}{
			"order_id": id,
			"status":   req.Status,
		})
		errors.BadRequest(c, errors.OrderInvalidStatus, "unknown order status: "+req.Status)
		return
	}

	order, err := ctrl.orderService.AdvanceStatus(id, newStatus)
	if err != nil {
		var transitionErr *service.InvalidTransitionError
		switch {
		case stderrors.Is(err, service.ErrOrderNotFound):
			errors.NotFound(c, errors.OrderNotFound, "order not found")
		case stderrors.As(err, &transitionErr):
			log.Warn("Invalid order status transition", map[string]interface{}{
				"order_id": id,
				"from":     transitionErr.From,
				"to":       transitionErr.To,
			})
			c.JSON(http.StatusConflict, gin.H{
				"error":   errors.OrderInvalidTransition,
				"message": transitionErr.Error(),
				"from":    transitionErr.From,
				"to":      transitionErr.To,
			})
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": id,
				"status":   req.Status,
			})
			errors.InternalError(c, "failed to update order status")
		}
		return
	}

	log.Info("Order status updated", map[string]interface{}{
		"order_id": id,
		"status":   req.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// CancelOrder lets the owner cancel their own pending or processing order
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
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

	// Ownership gate first so other users' orders stay invisible.
	if _, err := ctrl.orderService.GetOrderByID(userID, id); err != nil {
		if stderrors.Is(err, service.ErrOrderNotFound) {
			errors.NotFound(c, errors.OrderNotFound, "order not found")
			return
		}
		errors.InternalError(c, "failed to fetch order")
		return
	}

	order, err := ctrl.orderService.AdvanceStatus(id, model.OrderStatusCancelled)
	if err != nil {
		var transitionErr *service.InvalidTransitionError
		if stderrors.As(err, &transitionErr) {
			log.Warn("Order cancellation rejected", map[string]interface{}{
				"user_id":  userID,
				"order_id": id,
				"from":     transitionErr.From,
			})
			c.JSON(http.StatusConflict, gin.H{
				"error":   errors.OrderInvalidTransition,
				"message": transitionErr.Error(),
				"from":    transitionErr.From,
				"to":      transitionErr.To,
			})
			return
		}
		log.Error("Failed to cancel order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": id,
		})
		errors.InternalError(c, "failed to cancel order")
		return
	}

	log.Info("Order cancelled by owner", map[string]interface{}{
		"user_id":  userID,
		"order_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

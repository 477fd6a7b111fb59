package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/app/repository"
	"github.com/jshan/storefront-backend/internal/events"
	"github.com/jshan/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

const DefaultCheckoutTimeout = 5 * time.Second

// InvalidTransitionError reports the exact illegal move so the caller knows
// what the order's current state was. errors.Is(err, ErrInvalidTransition)
// matches.
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// OrderService converts cart snapshots into immutable orders and owns the
// status state machine afterwards.
type OrderService interface {
	// Checkout atomically debits stock for every cart line, creates the
	// order with price/name snapshots and clears the cart. All-or-nothing:
	// on any failure no debit, order row or cart change survives. It is
	// never retried internally; the client re-submits.
	Checkout(userID uint) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	// AdvanceStatus applies one legal state machine step. Cancellation
	// credits stock back for every item in the same transaction. Every
	// committed transition emits an OrderStatusChanged event.
	AdvanceStatus(orderID uint, newStatus model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	orderRepo       repository.OrderRepository
	cartRepo        repository.CartRepository
	stockRepo       repository.StockRepository
	publisher       events.Publisher
	db              *gorm.DB
	checkoutTimeout time.Duration
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	stockRepo repository.StockRepository,
	publisher events.Publisher,
	db *gorm.DB,
	checkoutTimeout time.Duration,
) OrderService {
	if checkoutTimeout <= 0 {
		checkoutTimeout = DefaultCheckoutTimeout
	}
	return &orderService{
		orderRepo:       orderRepo,
		cartRepo:        cartRepo,
		stockRepo:       stockRepo,
		publisher:       publisher,
		db:              db,
		checkoutTimeout: checkoutTimeout,
	}
}

func (s *orderService) Checkout(userID uint) (*model.Order, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id": userID,
	})

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch cart items for checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if len(cartItems) == 0 {
		logger.Warn("Checkout rejected: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	// The whole transaction runs under a deadline; if storage stalls,
	// the context expiry aborts the transaction and releases its locks
	// instead of holding them indefinitely.
	ctx, cancel := context.WithTimeout(context.Background(), s.checkoutTimeout)
	defer cancel()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	txStock := s.stockRepo.WithTx(tx)

	var (
		totalCents int64
		orderItems []model.OrderItem
	)

	for _, cartItem := range cartItems {
		// The conditional debit is the authoritative stock check. The
		// soft check at add-to-cart time guarantees nothing by now.
		if err := txStock.TryDebit(cartItem.ProductID, cartItem.Quantity); err != nil {
			tx.Rollback()
			return nil, s.checkoutDebitError(userID, cartItem, err)
		}

		var product model.Product
		if err := tx.First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to snapshot product during checkout", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID:      cartItem.ProductID,
			ProductName:    product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       cartItem.Quantity,
		})
		totalCents += product.PriceCents * int64(cartItem.Quantity)
	}

	order := &model.Order{
		UserID:     userID,
		Status:     model.OrderStatusPending,
		TotalCents: totalCents,
		OrderItems: orderItems,
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id":     userID,
			"total_cents": totalCents,
		})
		return nil, err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart during checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_cents": totalCents,
		"item_count":  len(orderItems),
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) checkoutDebitError(userID uint, cartItem model.CartItem, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Warn("Checkout failed: product vanished", map[string]interface{}{
			"user_id":    userID,
			"product_id": cartItem.ProductID,
		})
		return ErrProductNotFound
	case errors.Is(err, repository.ErrProductUnavailable):
		logger.Warn("Checkout failed: product unavailable", map[string]interface{}{
			"user_id":    userID,
			"product_id": cartItem.ProductID,
		})
		return &ProductUnavailableError{ProductID: cartItem.ProductID}
	case errors.Is(err, repository.ErrStockInsufficient):
		logger.Warn("Checkout failed: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": cartItem.ProductID,
			"requested":  cartItem.Quantity,
		})
		return &InsufficientStockError{
			ProductID: cartItem.ProductID,
			Requested: cartItem.Quantity,
		}
	default:
		logger.Error("Checkout debit failed", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": cartItem.ProductID,
		})
		return err
	}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("User orders fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) AdvanceStatus(orderID uint, newStatus model.OrderStatus) (*model.Order, error) {
	if !model.ValidStatus(newStatus) {
		return nil, &InvalidTransitionError{To: newStatus}
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	previous := order.Status
	if !model.CanTransition(previous, newStatus) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     previous,
			"to":       newStatus,
		})
		return nil, &InvalidTransitionError{From: previous, To: newStatus}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// CAS guards against a concurrent transition between our read
		// and this write; losing the race means the move is no longer
		// legal from the state we validated.
		if err := s.orderRepo.WithTx(tx).UpdateStatusIf(orderID, previous, newStatus); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &InvalidTransitionError{From: previous, To: newStatus}
			}
			return err
		}

		if newStatus == model.OrderStatusCancelled {
			txStock := s.stockRepo.WithTx(tx)
			for _, item := range order.OrderItems {
				if err := txStock.Credit(item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to advance order status", err, map[string]interface{}{
			"order_id": orderID,
			"from":     previous,
			"to":       newStatus,
		})
		return nil, err
	}

	logger.Info("Order status advanced", map[string]interface{}{
		"order_id": orderID,
		"from":     previous,
		"to":       newStatus,
	})

	// Publish only after commit so subscribers never see a transition
	// that rolled back. Delivery failure does not undo the transition.
	evt := events.OrderStatusChanged{
		EventID:        uuid.NewString(),
		OrderID:        order.ID,
		UserID:         order.UserID,
		PreviousStatus: previous,
		NewStatus:      newStatus,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderStatusChanged(context.Background(), evt); err != nil {
		logger.Error("Failed to publish order status event", err, map[string]interface{}{
			"order_id": order.ID,
			"to":       newStatus,
		})
	}

	return s.orderRepo.FindByID(orderID)
}

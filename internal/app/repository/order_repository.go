package repository

import (
	"time"

	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindStalePending(olderThan time.Time) ([]model.Order, error)
	UpdateStatusIf(id uint, from, to model.OrderStatus) error
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems")
}

func (r *orderRepository) Create(order *model.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id":     order.UserID,
			"total_cents": order.TotalCents,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"total_cents": order.TotalCents,
		"item_count":  len(order.OrderItems),
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := retryRead(func() error {
		return r.preloadOrder().First(&order, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := retryRead(func() error {
		return r.preloadOrder().Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&orders).Error
	})
	if err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return orders, nil
}

// FindStalePending returns pending orders created before the cutoff, for the
// expiry scheduler. Items are preloaded so cancellation can credit stock.
func (r *orderRepository) FindStalePending(olderThan time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().
		Where("status = ? AND created_at < ?", model.OrderStatusPending, olderThan).
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find stale pending orders in database", err, map[string]interface{}{
			"older_than": olderThan,
		})
		return nil, err
	}
	return orders, nil
}

// UpdateStatusIf is a compare-and-swap on the status column: it only applies
// when the stored status still equals from. Two racing transitions against
// the same order can never both succeed.
func (r *orderRepository) UpdateStatusIf(id uint, from, to model.OrderStatus) error {
	res := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		logger.Error("Failed conditional order status update in database", res.Error, map[string]interface{}{
			"order_id": id,
			"from":     from,
			"to":       to,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Order status updated in database", map[string]interface{}{
		"order_id": id,
		"from":     from,
		"to":       to,
	})
	return nil
}

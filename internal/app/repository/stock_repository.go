package repository

import (
	"errors"

	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStockInsufficient  = errors.New("insufficient stock")
	ErrProductUnavailable = errors.New("product not available for sale")
	ErrInvalidCreditAmount = errors.New("credit amount must be positive")
)

// StockSnapshot is a point-in-time read of a product's sellable state. It is
// advisory only: any concurrent debit can invalidate it immediately.
type StockSnapshot struct {
	ProductID uint
	Stock     int
	Available bool
}

// StockRepository is the stock ledger: the only writer of stock decrements
// and increments. Cart and order code never touch stock_quantity directly.
type StockRepository interface {
	// GetAvailable returns a snapshot with no side effects.
	GetAvailable(productID uint) (*StockSnapshot, error)
	// TryDebit atomically checks available && stock >= quantity and
	// decrements on success. Failure performs no mutation and is an
	// expected outcome, not a fault: callers branch on
	// ErrStockInsufficient / ErrProductUnavailable / gorm.ErrRecordNotFound.
	TryDebit(productID uint, quantity int) error
	// Credit atomically increments stock (cancellations, restocks).
	Credit(productID uint, quantity int) error
	// WithTx returns a ledger bound to the given transaction so debits can
	// participate in a larger atomic unit.
	WithTx(tx *gorm.DB) StockRepository
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) WithTx(tx *gorm.DB) StockRepository {
	return &stockRepository{db: tx}
}

func (r *stockRepository) GetAvailable(productID uint) (*StockSnapshot, error) {
	var product model.Product
	if err := r.db.Select("id", "stock_quantity", "available").
		First(&product, productID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to read stock snapshot", err, map[string]interface{}{
				"product_id": productID,
			})
		}
		return nil, err
	}

	return &StockSnapshot{
		ProductID: product.ID,
		Stock:     product.StockQuantity,
		Available: product.Available,
	}, nil
}

func (r *stockRepository) TryDebit(productID uint, quantity int) error {
	logger.Debug("Attempting stock debit", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})

	// Single guarded UPDATE instead of read-then-write: two concurrent
	// debits for the last unit can never both match the WHERE clause.
	res := r.db.Model(&model.Product{}).
		Where("id = ? AND available = ? AND stock_quantity >= ?", productID, true, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		logger.Error("Stock debit query failed", res.Error, map[string]interface{}{
			"product_id": productID,
			"quantity":   quantity,
		})
		return res.Error
	}

	if res.RowsAffected > 0 {
		logger.Debug("Stock debited", map[string]interface{}{
			"product_id": productID,
			"quantity":   quantity,
		})
		return nil
	}

	// Nothing matched: find out why so the caller can tell the user which
	// product blocked them.
	snap, err := r.GetAvailable(productID)
	if err != nil {
		return err
	}
	if !snap.Available {
		return ErrProductUnavailable
	}
	return ErrStockInsufficient
}

func (r *stockRepository) Credit(productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidCreditAmount
	}

	res := r.db.Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if res.Error != nil {
		logger.Error("Stock credit failed", res.Error, map[string]interface{}{
			"product_id": productID,
			"quantity":   quantity,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Stock credited", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
	return nil
}

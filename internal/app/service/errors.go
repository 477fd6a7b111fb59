package service

import (
	"errors"
	"fmt"
)

// Sentinels shared across services. Availability and stock failures are
// expected races with other shoppers, not faults; controllers branch on them
// with errors.Is and surface the offending product to the client.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available for purchase")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// InsufficientStockError names the product that blocked the operation so the
// UI can highlight the exact cart line. errors.Is(err, ErrInsufficientStock)
// still matches.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ProductUnavailableError marks a product that is intentionally not sellable
// (available=false), regardless of its stock count.
type ProductUnavailableError struct {
	ProductID uint
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is not available for purchase", e.ProductID)
}

func (e *ProductUnavailableError) Is(target error) bool {
	return target == ErrProductUnavailable
}

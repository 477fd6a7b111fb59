package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError_RecordNotFound(t *testing.T) {
	tests := []struct {
		context string
		message string
	}{
		{"product lookup", "product not found"},
		{"cart item", "cart item not found"},
		{"wishlist entry", "wishlist entry not found"},
		{"order fetch", "order not found"},
		{"user fetch", "user not found"},
		{"something else", "requested record not found"},
	}

	for _, tt := range tests {
		t.Run(tt.context, func(t *testing.T) {
			info := ParseError(gorm.ErrRecordNotFound, tt.context)
			assert.Equal(t, ResourceNotFound, info.Code)
			assert.Equal(t, tt.message, info.Message)
		})
	}
}

func TestParseError_PqUniqueViolation(t *testing.T) {
	err := &pq.Error{
		Code:       "23505",
		Constraint: "idx_wishlist_items_user_product",
		Detail:     "Key (user_id, product_id)=(1, 2) already exists.",
	}

	info := ParseError(err, "wishlist")
	assert.Equal(t, WishlistItemExists, info.Code)
}

func TestParseError_PqUniqueViolation_Email(t *testing.T) {
	err := &pq.Error{
		Code:       "23505",
		Constraint: "idx_users_email",
		Detail:     "Key (email)=(a@b.c) already exists.",
	}

	info := ParseError(err, "user")
	assert.Equal(t, ResourceAlreadyExists, info.Code)
	assert.Equal(t, "email is already registered", info.Message)
}

func TestParseError_PqForeignKeyViolation(t *testing.T) {
	err := &pq.Error{
		Code:       "23503",
		Constraint: "fk_cart_items_product",
		Detail:     `Key (product_id)=(42) is not present in table "products".`,
	}

	info := ParseError(err, "cart")
	assert.Equal(t, ProductNotFound, info.Code)
}

func TestParseError_PqNotNullViolation(t *testing.T) {
	err := &pq.Error{
		Code:   "23502",
		Column: "name",
	}

	info := ParseError(err, "product")
	assert.Equal(t, ValidationRequired, info.Code)
	assert.Contains(t, info.Message, "name")
}

func TestParseError_PqCheckViolation(t *testing.T) {
	err := &pq.Error{
		Code:       "23514",
		Constraint: "chk_products_stock_quantity",
	}

	info := ParseError(err, "product")
	assert.Equal(t, StockInsufficient, info.Code)
}

func TestParseError_WrappedPqError(t *testing.T) {
	pqErr := &pq.Error{
		Code:       "23505",
		Constraint: "idx_wishlist_items_user_product",
	}
	wrapped := fmt.Errorf("create wishlist entry: %w", pqErr)

	info := ParseError(wrapped, "wishlist")
	assert.Equal(t, WishlistItemExists, info.Code)
}

func TestParseError_StringFallback(t *testing.T) {
	// The sqlite driver has no SQLSTATE; messages must still parse
	tests := []struct {
		name string
		err  error
		code string
	}{
		{
			name: "sqlite unique",
			err:  errors.New("UNIQUE constraint failed: wishlist_items.user_id, wishlist_items.product_id"),
			code: WishlistItemExists,
		},
		{
			name: "sqlite foreign key",
			err:  errors.New("FOREIGN KEY constraint failed: product_id"),
			code: ProductNotFound,
		},
		{
			name: "connection refused",
			err:  errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			code: InternalDatabaseError,
		},
		{
			name: "deadline exceeded",
			err:  errors.New("context deadline exceeded"),
			code: InternalDatabaseError,
		},
		{
			name: "unknown error",
			err:  errors.New("something unexpected"),
			code: InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, "")
			assert.Equal(t, tt.code, info.Code)
		})
	}
}

func TestParseError_Nil(t *testing.T) {
	info := ParseError(nil, "anything")
	assert.Equal(t, InternalServerError, info.Code)
}

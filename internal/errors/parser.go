package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE classes we care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ErrorInfo carries a response code and a client-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps storage errors onto response codes without leaking
// driver internals. Prefers the typed pq.Error SQLSTATE when the
// Postgres driver is underneath; falls back to message inspection so
// the sqlite test driver still parses.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "internal server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return parseDuplicateKeyError(pqErr.Constraint + " " + pqErr.Detail)
		case pgForeignKeyViolation:
			return parseForeignKeyError(pqErr.Constraint + " " + pqErr.Detail)
		case pgNotNullViolation:
			return ErrorInfo{Code: ValidationRequired, Message: "required field " + pqErr.Column + " is missing"}
		case pgCheckViolation:
			return parseCheckConstraintError(pqErr.Constraint)
		}
	}

	errStrLower := strings.ToLower(err.Error())

	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower)
	}
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "a required field is missing"}
	}
	if strings.Contains(errStrLower, "check constraint") {
		return parseCheckConstraintError(errStrLower)
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") ||
		strings.Contains(errStrLower, "context deadline exceeded") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "storage is temporarily unavailable, please try again",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: "internal server error, please try again later"}
}

func parseDuplicateKeyError(detail string) ErrorInfo {
	detailLower := strings.ToLower(detail)

	if strings.Contains(detailLower, "wishlist") {
		return ErrorInfo{Code: WishlistItemExists, Message: "product is already on the wishlist"}
	}
	if strings.Contains(detailLower, "email") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "email is already registered"}
	}
	if strings.Contains(detailLower, "pkey") || strings.Contains(detailLower, "primary key") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "record already exists, please retry"}
	}

	return ErrorInfo{Code: ResourceAlreadyExists, Message: "record already exists"}
}

func parseForeignKeyError(detail string) ErrorInfo {
	detailLower := strings.ToLower(detail)

	if strings.Contains(detailLower, "still referenced") {
		return ErrorInfo{Code: ResourceConflict, Message: "record is referenced by other data and cannot be deleted"}
	}
	if strings.Contains(detailLower, "product_id") || strings.Contains(detailLower, "fk_products") {
		return ErrorInfo{Code: ProductNotFound, Message: "product does not exist"}
	}
	if strings.Contains(detailLower, "user_id") || strings.Contains(detailLower, "fk_users") {
		return ErrorInfo{Code: ResourceNotFound, Message: "user does not exist"}
	}
	if strings.Contains(detailLower, "order_id") || strings.Contains(detailLower, "fk_orders") {
		return ErrorInfo{Code: OrderNotFound, Message: "order does not exist"}
	}

	return ErrorInfo{Code: ResourceNotFound, Message: "referenced record does not exist"}
}

func parseCheckConstraintError(detail string) ErrorInfo {
	detailLower := strings.ToLower(detail)

	if strings.Contains(detailLower, "stock") {
		return ErrorInfo{Code: StockInsufficient, Message: "not enough stock"}
	}
	if strings.Contains(detailLower, "quantity") {
		return ErrorInfo{Code: CartInvalidQuantity, Message: "quantity must be at least 1"}
	}
	if strings.Contains(detailLower, "price") {
		return ErrorInfo{Code: ValidationInvalidRange, Message: "price must not be negative"}
	}

	return ErrorInfo{Code: ValidationInvalidInput, Message: "invalid input"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product"):
		return "product not found"
	case strings.Contains(contextLower, "cart"):
		return "cart item not found"
	case strings.Contains(contextLower, "wishlist"):
		return "wishlist entry not found"
	case strings.Contains(contextLower, "order"):
		return "order not found"
	case strings.Contains(contextLower, "user"):
		return "user not found"
	}

	return "requested record not found"
}

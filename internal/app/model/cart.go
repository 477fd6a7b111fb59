package model

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is one user's intent to buy a quantity of one product. Quantity is
// advisory until checkout; nothing is reserved. The partial unique index
// keeps at most one live row per (user, product) even when two sessions add
// the same product at once; soft-deleted rows do not occupy the slot.
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_cart_items_user_product,unique,where:deleted_at IS NULL" json:"user_id"`
	ProductID uint           `gorm:"not null;index;index:idx_cart_items_user_product" json:"product_id"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

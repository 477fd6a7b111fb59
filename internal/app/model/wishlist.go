package model

import (
	"time"

	"gorm.io/gorm"
)

// WishlistItem is one saved product per user. The partial unique index makes
// the one-entry-per-(user, product) rule structural; soft-deleted rows do
// not occupy the slot.
type WishlistItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_wishlist_items_user_product,unique,where:deleted_at IS NULL" json:"user_id"`
	ProductID uint           `gorm:"not null;index;index:idx_wishlist_items_user_product" json:"product_id"`
	CreatedAt time.Time      `json:"added_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Associations (loaded with Preload)
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

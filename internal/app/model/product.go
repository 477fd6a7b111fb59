package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product carries the stock ledger columns: StockQuantity never goes below
// zero (enforced by the conditional debit), and Available=false blocks new
// cart additions regardless of the remaining count.
//
// PriceCents is the canonical price representation: integer minor units.
// Decimal input is converted at the edge (seed import, admin API) and never
// carried inward as a float or string.
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	PriceCents    int64          `gorm:"not null" json:"price_cents"`
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`
	Available     bool           `gorm:"not null;default:true" json:"available"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	ImageURL      string         `json:"image_url"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
	CartItems  []CartItem  `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

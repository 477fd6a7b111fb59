package db

import (
	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/pkg/logger"
	"github.com/lib/pq"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Product{},
		&model.CartItem{},
		&model.WishlistItem{},
		&model.Order{},
		&model.OrderItem{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds a small starter catalog so a freshly created database is usable.
// Skips when products already exist.
func Seed() error {
	var count int64
	if err := DB.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding starter catalog...")

	products := []model.Product{
		{
			Name:          "Wireless Mouse",
			Description:   "2.4GHz wireless mouse with silent clicks",
			PriceCents:    2490,
			StockQuantity: 120,
			Available:     true,
			Tags:          pq.StringArray{"electronics", "accessories"},
		},
		{
			Name:          "Mechanical Keyboard",
			Description:   "Tenkeyless mechanical keyboard, brown switches",
			PriceCents:    8990,
			StockQuantity: 45,
			Available:     true,
			Tags:          pq.StringArray{"electronics", "accessories"},
		},
		{
			Name:          "Ceramic Mug",
			Description:   "350ml ceramic mug, dishwasher safe",
			PriceCents:    1250,
			StockQuantity: 200,
			Available:     true,
			Tags:          pq.StringArray{"kitchen"},
		},
		{
			Name:          "Notebook A5",
			Description:   "Dotted A5 notebook, 180 pages",
			PriceCents:    790,
			StockQuantity: 300,
			Available:     true,
			Tags:          pq.StringArray{"stationery"},
		},
	}

	for _, product := range products {
		if err := DB.Create(&product).Error; err != nil {
			logger.Error("Failed to create seed product", err, map[string]interface{}{
				"name": product.Name,
			})
			return err
		}
	}

	logger.Info("Starter catalog seeded successfully", map[string]interface{}{
		"products": len(products),
	})
	return nil
}

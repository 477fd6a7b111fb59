package service

import (
	"errors"

	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/app/repository"
	"github.com/jshan/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidRestockAmount = errors.New("restock amount must be positive")

type ProductService interface {
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(product *model.Product) error
	DeleteProduct(id uint) error
	// SetAvailability flips the listed/delisted flag. Delisting blocks new
	// debits but does not touch carts that already reference the product.
	SetAvailability(id uint, available bool) (*model.Product, error)
	// Restock credits stock back onto the shelf.
	Restock(id uint, amount int) (*model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

func NewProductService(productRepo repository.ProductRepository, stockRepo repository.StockRepository) ProductService {
	return &productService{productRepo: productRepo, stockRepo: stockRepo}
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(product *model.Product) error {
	if err := s.productRepo.Create(product); err != nil {
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":  product.ID,
		"name":        product.Name,
		"price_cents": product.PriceCents,
		"stock":       product.StockQuantity,
	})
	return nil
}

func (s *productService) UpdateProduct(product *model.Product) error {
	if _, err := s.GetProductByID(product.ID); err != nil {
		return err
	}
	return s.productRepo.Update(product)
}

func (s *productService) DeleteProduct(id uint) error {
	if _, err := s.GetProductByID(id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *productService) SetAvailability(id uint, available bool) (*model.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	product.Available = available
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product availability changed", map[string]interface{}{
		"product_id": id,
		"available":  available,
	})
	return product, nil
}

func (s *productService) Restock(id uint, amount int) (*model.Product, error) {
	if amount <= 0 {
		return nil, ErrInvalidRestockAmount
	}

	if err := s.stockRepo.Credit(id, amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	logger.Info("Product restocked", map[string]interface{}{
		"product_id": id,
		"amount":     amount,
	})
	return s.GetProductByID(id)
}

package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/app/service"
	"github.com/jshan/storefront-backend/internal/errors"
	"github.com/jshan/storefront-backend/internal/middleware"
	"github.com/lib/pq"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	PriceCents    int64    `json:"price_cents" binding:"required,gte=0"`
	StockQuantity int      `json:"stock_quantity" binding:"gte=0"`
	Available     *bool    `json:"available"`
	Tags          []string `json:"tags"`
	ImageURL      string   `json:"image_url"`
}

type UpdateProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	PriceCents  *int64    `json:"price_cents"`
	Tags        *[]string `json:"tags"`
	ImageURL    *string   `json:"image_url"`
}

type SetAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

type RestockRequest struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

// GetAllProducts lists the catalog
// GET /api/v1/products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.GetAllProducts()
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		errors.InternalError(c, "failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns one product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if stderrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		errors.InternalError(c, "failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct adds a catalog entry
// POST /api/v1/products (admin)
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create product request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		StockQuantity: req.StockQuantity,
		Available:     available,
		Tags:          pq.StringArray(req.Tags),
		ImageURL:      req.ImageURL,
	}

	if err := ctrl.productService.CreateProduct(product); err != nil {
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		errors.InternalError(c, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct edits catalog fields. Stock and availability have their
// own endpoints.
// PUT /api/v1/products/:id (admin)
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if stderrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "product not found")
			return
		}
		errors.InternalError(c, "failed to fetch product")
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			errors.BadRequest(c, errors.ValidationInvalidRange, "price must not be negative")
			return
		}
		product.PriceCents = *req.PriceCents
	}
	if req.Tags != nil {
		product.Tags = pq.StringArray(*req.Tags)
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	if err := ctrl.productService.UpdateProduct(product); err != nil {
		log.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		errors.InternalError(c, "failed to update product")
		return
	}

	log.Info("Product updated", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a catalog entry
// DELETE /api/v1/products/:id (admin)
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		if stderrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		errors.InternalError(c, "failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// SetAvailability lists or delists a product
// PUT /api/v1/products/:id/availability (admin)
func (ctrl *ProductController) SetAvailability(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationInvalidInput, err.Error())
		return
	}

	product, err := ctrl.productService.SetAvailability(id, *req.Available)
	if err != nil {
		if stderrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to set product availability", err, map[string]interface{}{
			"product_id": id,
		})
		errors.InternalError(c, "failed to set product availability")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product availability updated",
		"product": product,
	})
}

// Restock credits stock to a product
// POST /api/v1/products/:id/restock (admin)
func (ctrl *ProductController) Restock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.StockInvalidAmount, err.Error())
		return
	}

	product, err := ctrl.productService.Restock(id, req.Amount)
	if err != nil {
		switch {
		case stderrors.Is(err, service.ErrProductNotFound):
			errors.NotFound(c, errors.ProductNotFound, "product not found")
		case stderrors.Is(err, service.ErrInvalidRestockAmount):
			errors.BadRequest(c, errors.StockInvalidAmount, "restock amount must be positive")
		default:
			log.Error("Failed to restock product", err, map[string]interface{}{
				"product_id": id,
				"amount":     req.Amount,
			})
			errors.InternalError(c, "failed to restock product")
		}
		return
	}

	log.Info("Product restocked", map[string]interface{}{
		"product_id": id,
		"amount":     req.Amount,
		"stock":      product.StockQuantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product restocked successfully",
		"product": product,
	})
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"devboma/internal/caching"
	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

// CreateProductInput carries the writable product fields.
type CreateProductInput struct {
	ShopID       uuid.UUID `json:"shop_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Price        int64     `json:"price"`
	ComparePrice *int64    `json:"compare_price"`
	Cost         *int64    `json:"cost"`
	SKU          *string   `json:"sku"`
	Inventory    int       `json:"inventory"`
	Category     *string   `json:"category"`
	Status       string    `json:"status"`
}

// InventoryAdjustment is a set / add / subtract request against a product's
// stock level.
type InventoryAdjustment struct {
	Operation string `json:"operation"`
	Quantity  int    `json:"quantity"`
}

type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*models.Product, error)
	GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, tenantID, productID uuid.UUID, input CreateProductInput) (*models.Product, error)
	Delete(ctx context.Context, tenantID, productID uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter models.ProductSearchFilter) ([]*models.Product, int, error)
	AdjustInventory(ctx context.Context, tenantID, productID uuid.UUID, adj InventoryAdjustment) (int, error)
	AttachImage(ctx context.Context, tenantID, productID uuid.UUID, url string) error
}

type productService struct {
	productRepo *repositories.ProductRepository
	shopRepo    *repositories.ShopRepository
	cache       caching.CacheService
}

const productCacheTTL = 5 * time.Minute

func NewProductService(productRepo *repositories.ProductRepository, shopRepo *repositories.ShopRepository, cache caching.CacheService) ProductService {
	return &productService{productRepo: productRepo, shopRepo: shopRepo, cache: cache}
}

const (
	maxInventory = 1000000
	maxPrice     = int64(100000000) // 1M in major units
)

func validProductStatus(s string) bool {
	switch s {
	case "active", "draft", "archived":
		return true
	}
	return false
}

func (s *productService) validate(ctx context.Context, tenantID uuid.UUID, input *CreateProductInput) error {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return common.NewValidationError("name", err.Error())
	}
	if err := common.ValidateAmount(input.Price, "price", maxPrice); err != nil {
		return common.NewValidationError("price", err.Error())
	}
	if input.Inventory < 0 || input.Inventory > maxInventory {
		return common.NewValidationError("inventory", "inventory must be between 0 and 1000000")
	}
	if input.Status == "" {
		input.Status = "draft"
	}
	if !validProductStatus(input.Status) {
		return common.NewValidationError("status", "status must be active, draft or archived")
	}
	if err := common.SanitizeHTMLField(input.Description, "description"); err != nil {
		return common.NewValidationError("description", err.Error())
	}
	if _, err := s.shopRepo.GetByID(ctx, tenantID, input.ShopID); err != nil {
		return common.NewValidationError("shop_id", "shop not found")
	}
	return nil
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if err := s.validate(ctx, tenantID, &input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ShopID:       input.ShopID,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		ComparePrice: input.ComparePrice,
		Cost:         input.Cost,
		SKU:          input.SKU,
		Inventory:    input.Inventory,
		Images:       []string{},
		Category:     input.Category,
		Status:       input.Status,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, tenantID, productID); err == nil && cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetProduct(ctx, tenantID, product, productCacheTTL); err != nil {
		log.Printf("WARN: failed to cache product %s: %v", productID, err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, tenantID, productID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if err := s.validate(ctx, tenantID, &input); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.ComparePrice = input.ComparePrice
	existing.Cost = input.Cost
	existing.SKU = input.SKU
	existing.Category = input.Category
	existing.Status = input.Status

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if err := s.cache.DeleteProduct(ctx, tenantID, productID); err != nil {
		log.Printf("WARN: failed to invalidate product cache %s: %v", productID, err)
	}
	return existing, nil
}

func (s *productService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, tenantID, productID); err != nil {
		return err
	}
	if err := s.cache.DeleteProduct(ctx, tenantID, productID); err != nil {
		log.Printf("WARN: failed to invalidate product cache %s: %v", productID, err)
	}
	return nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, filter models.ProductSearchFilter) ([]*models.Product, int, error) {
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewValidationError("offset", err.Error())
	}
	filter.Limit = limit
	filter.Offset = offset

	products, err := s.productRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// AdjustInventory applies a manual stock correction and returns the new
// level. Subtractions share the same no-negative guard the order path uses.
func (s *productService) AdjustInventory(ctx context.Context, tenantID, productID uuid.UUID, adj InventoryAdjustment) (int, error) {
	if adj.Quantity < 0 || adj.Quantity > maxInventory {
		return 0, common.NewValidationError("quantity", "quantity must be between 0 and 1000000")
	}

	var inventory int
	var err error
	switch adj.Operation {
	case "set":
		inventory, err = s.productRepo.SetInventory(ctx, tenantID, productID, adj.Quantity)
	case "add":
		inventory, err = s.productRepo.AddInventory(ctx, tenantID, productID, adj.Quantity)
	case "subtract":
		inventory, err = s.productRepo.AddInventory(ctx, tenantID, productID, -adj.Quantity)
	default:
		return 0, common.NewValidationError("operation", "operation must be set, add or subtract")
	}
	if err != nil {
		return 0, err
	}

	if cacheErr := s.cache.DeleteProduct(ctx, tenantID, productID); cacheErr != nil {
		log.Printf("WARN: failed to invalidate product cache %s: %v", productID, cacheErr)
	}
	return inventory, nil
}

func (s *productService) AttachImage(ctx context.Context, tenantID, productID uuid.UUID, url string) error {
	if err := s.productRepo.AddImage(ctx, tenantID, productID, url); err != nil {
		return err
	}
	if err := s.cache.DeleteProduct(ctx, tenantID, productID); err != nil {
		log.Printf("WARN: failed to invalidate product cache %s: %v", productID, err)
	}
	return nil
}

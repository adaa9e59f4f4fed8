package services

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

// CreateShopInput carries the writable shop fields.
type CreateShopInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
}

type ShopService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateShopInput) (*models.Shop, error)
	GetByID(ctx context.Context, tenantID, shopID uuid.UUID) (*models.Shop, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Shop, error)
	Update(ctx context.Context, tenantID, shopID uuid.UUID, input CreateShopInput) (*models.Shop, error)
	Delete(ctx context.Context, tenantID, shopID uuid.UUID) error
}

type shopService struct {
	shopRepo *repositories.ShopRepository
}

func NewShopService(shopRepo *repositories.ShopRepository) ShopService {
	return &shopService{shopRepo: shopRepo}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func validateShopInput(input *CreateShopInput) error {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return common.NewValidationError("name", err.Error())
	}
	if !slugPattern.MatchString(input.Slug) {
		return common.NewValidationError("slug", "slug must be lowercase letters, digits and hyphens")
	}
	if len(input.Currency) != 3 {
		return common.NewValidationError("currency", "currency must be a 3-letter ISO code")
	}
	if input.Status == "" {
		input.Status = "active"
	}
	if input.Status != "active" && input.Status != "inactive" {
		return common.NewValidationError("status", "status must be active or inactive")
	}
	return common.SanitizeHTMLField(input.Description, "description")
}

func (s *shopService) Create(ctx context.Context, tenantID uuid.UUID, input CreateShopInput) (*models.Shop, error) {
	if err := validateShopInput(&input); err != nil {
		return nil, err
	}

	shop := &models.Shop{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Currency:    input.Currency,
		Status:      input.Status,
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *shopService) GetByID(ctx context.Context, tenantID, shopID uuid.UUID) (*models.Shop, error) {
	return s.shopRepo.GetByID(ctx, tenantID, shopID)
}

func (s *shopService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Shop, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, common.NewValidationError("offset", err.Error())
	}
	return s.shopRepo.List(ctx, tenantID, limit, offset)
}

func (s *shopService) Update(ctx context.Context, tenantID, shopID uuid.UUID, input CreateShopInput) (*models.Shop, error) {
	if err := validateShopInput(&input); err != nil {
		return nil, err
	}

	shop, err := s.shopRepo.GetByID(ctx, tenantID, shopID)
	if err != nil {
		return nil, err
	}
	shop.Name = input.Name
	shop.Slug = input.Slug
	shop.Description = input.Description
	shop.Currency = input.Currency
	shop.Status = input.Status

	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *shopService) Delete(ctx context.Context, tenantID, shopID uuid.UUID) error {
	return s.shopRepo.Delete(ctx, tenantID, shopID)
}

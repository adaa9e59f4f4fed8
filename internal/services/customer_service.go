package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

// CreateCustomerInput carries the writable customer fields.
type CreateCustomerInput struct {
	ShopID *uuid.UUID `json:"shop_id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Phone  *string    `json:"phone"`
}

type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateCustomerInput) (*models.Customer, error)
	GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error)
	Update(ctx context.Context, tenantID, customerID uuid.UUID, input CreateCustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, tenantID, customerID uuid.UUID) error
}

type customerService struct {
	customerRepo *repositories.CustomerRepository
}

func NewCustomerService(customerRepo *repositories.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func validateCustomerInput(input *CreateCustomerInput) error {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return common.NewValidationError("name", err.Error())
	}
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return common.NewValidationError("email", "a valid email is required")
	}
	return common.ValidateOptionalString(input.Phone, "phone", 32)
}

func (s *customerService) Create(ctx context.Context, tenantID uuid.UUID, input CreateCustomerInput) (*models.Customer, error) {
	if err := validateCustomerInput(&input); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:       uuid.New(),
		TenantID: tenantID,
		ShopID:   input.ShopID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, tenantID, customerID)
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, common.NewValidationError("offset", err.Error())
	}
	return s.customerRepo.List(ctx, tenantID, search, limit, offset)
}

func (s *customerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, input CreateCustomerInput) (*models.Customer, error) {
	if err := validateCustomerInput(&input); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	customer.ShopID = input.ShopID
	customer.Name = input.Name
	customer.Email = input.Email
	customer.Phone = input.Phone

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	return s.customerRepo.Delete(ctx, tenantID, customerID)
}

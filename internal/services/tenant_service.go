package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

// CreateTenantInput carries the writable tenant fields. Tenant management
// is a platform-admin surface.
type CreateTenantInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Plan   string `json:"plan"`
	Status string `json:"status"`
}

type TenantService interface {
	Create(ctx context.Context, input CreateTenantInput) (*models.Tenant, error)
	GetByID(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	Update(ctx context.Context, tenantID uuid.UUID, input CreateTenantInput) (*models.Tenant, error)
}

type tenantService struct {
	tenantRepo *repositories.TenantRepository
}

func NewTenantService(tenantRepo *repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

func validateTenantInput(input *CreateTenantInput) error {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return common.NewValidationError("name", err.Error())
	}
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return common.NewValidationError("email", "a valid email is required")
	}
	if input.Plan == "" {
		input.Plan = "free"
	}
	if input.Status == "" {
		input.Status = "active"
	}
	if input.Status != "active" && input.Status != "suspended" {
		return common.NewValidationError("status", "status must be active or suspended")
	}
	return nil
}

func (s *tenantService) Create(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	if err := validateTenantInput(&input); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:     uuid.New(),
		Name:   input.Name,
		Email:  input.Email,
		Plan:   input.Plan,
		Status: input.Status,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, tenantID)
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, common.NewValidationError("offset", err.Error())
	}
	return s.tenantRepo.List(ctx, limit, offset)
}

func (s *tenantService) Update(ctx context.Context, tenantID uuid.UUID, input CreateTenantInput) (*models.Tenant, error) {
	if err := validateTenantInput(&input); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tenant.Name = input.Name
	tenant.Email = input.Email
	tenant.Plan = input.Plan
	tenant.Status = input.Status

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

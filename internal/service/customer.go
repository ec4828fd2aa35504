package service

import (
	"context"

	"toolirent/internal/domain"
	"toolirent/internal/repository"
)

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	if c.Name == "" || c.Email == "" {
		return domain.Validationf("customer name and email are required")
	}
	return s.customerRepo.Create(ctx, c)
}

func (s *customerService) GetCustomer(ctx context.Context, id int32) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	if c.Name == "" || c.Email == "" {
		return domain.Validationf("customer name and email are required")
	}
	return s.customerRepo.Update(ctx, c)
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int32) error {
	return s.customerRepo.Delete(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customerRepo.List(ctx)
}

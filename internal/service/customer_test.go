package service_test

import (
	"context"
	"testing"

	"toolirent/internal/domain"
	"toolirent/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("name and email required", func(t *testing.T) {
		svc := service.NewCustomerService(new(MockCustomerRepo))

		assert.ErrorIs(t, svc.CreateCustomer(ctx, &domain.Customer{Email: "a@b.c"}), domain.ErrValidation)
		assert.ErrorIs(t, svc.CreateCustomer(ctx, &domain.Customer{Name: "A"}), domain.ErrValidation)
	})

	t.Run("valid customer persisted", func(t *testing.T) {
		customerRepo := new(MockCustomerRepo)
		svc := service.NewCustomerService(customerRepo)

		customerRepo.On("Create", ctx, mock.AnythingOfType("*domain.Customer")).Return(nil)

		err := svc.CreateCustomer(ctx, &domain.Customer{Name: "A", Email: "a@b.c", IsActive: true})
		require.NoError(t, err)
		customerRepo.AssertExpectations(t)
	})
}

func TestCustomerService_GetCustomer(t *testing.T) {
	ctx := context.Background()
	customerRepo := new(MockCustomerRepo)
	svc := service.NewCustomerService(customerRepo)

	customerRepo.On("GetByID", ctx, int32(404)).Return(nil, domain.ErrNotFound)

	_, err := svc.GetCustomer(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

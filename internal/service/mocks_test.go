package service_test

import (
	"context"
	"time"

	"toolirent/internal/domain"
	"toolirent/internal/repository"
	"toolirent/internal/security"

	"github.com/stretchr/testify/mock"
)

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) List(ctx context.Context) ([]domain.Rental, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) CreateWithReservations(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) UpdateWithAdjustments(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) MarkReturned(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRentalRepo) DeleteWithReleases(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) Create(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockToolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) Update(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockToolRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockToolRepo) List(ctx context.Context) ([]domain.Tool, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Tool), args.Error(1)
}
func (m *MockToolRepo) ListAvailable(ctx context.Context) ([]domain.Tool, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Tool), args.Error(1)
}
func (m *MockToolRepo) Filter(ctx context.Context, category string, status domain.ToolStatus, onlyAvailable bool) ([]domain.Tool, error) {
	args := m.Called(ctx, category, status, onlyAvailable)
	return args.Get(0).([]domain.Tool), args.Error(1)
}
func (m *MockToolRepo) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockToolRepo) TryReserve(ctx context.Context, toolID, quantity int32) error {
	args := m.Called(ctx, toolID, quantity)
	return args.Error(0)
}
func (m *MockToolRepo) Release(ctx context.Context, toolID, quantity int32) error {
	args := m.Called(ctx, toolID, quantity)
	return args.Error(0)
}

// MockCustomerRepo
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}
func (m *MockCustomerRepo) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}
func (m *MockCustomerRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSummaryRepo
type MockSummaryRepo struct {
	mock.Mock
}

func (m *MockSummaryRepo) GetSummary(ctx context.Context) (*repository.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Summary), args.Error(1)
}
func (m *MockSummaryRepo) TopTools(ctx context.Context, from, to *time.Time, limit int32) ([]repository.TopTool, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TopTool), args.Error(1)
}
func (m *MockSummaryRepo) ListOverdueRentals(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockTokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(userID int32, email string, roles []string) (string, error) {
	args := m.Called(userID, email, roles)
	return args.String(0), args.Error(1)
}
func (m *MockTokenManager) ValidateToken(tokenString string) (*security.UserClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.UserClaims), args.Error(1)
}

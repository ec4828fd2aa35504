package service

import (
	"context"
	"time"

	"toolirent/internal/domain"
	"toolirent/internal/policy"
	"toolirent/internal/repository"
)

// RentalLineInput is one requested (tool, quantity) reservation.
type RentalLineInput struct {
	ToolID   int32
	Quantity int32
}

// CreateRentalInput carries a rental creation request. CustomerID is
// only honored for admin callers; members always rent for themselves.
type CreateRentalInput struct {
	CustomerID int32
	StartDate  time.Time
	EndDate    time.Time
	Lines      []RentalLineInput
}

// UpdateRentalInput replaces an active rental's dates and lines.
type UpdateRentalInput struct {
	RentalID  int32
	StartDate time.Time
	EndDate   time.Time
	Lines     []RentalLineInput
}

type RentalService interface {
	ListRentals(ctx context.Context, caller policy.Caller) ([]domain.Rental, error)
	GetRental(ctx context.Context, id int32, caller policy.Caller) (*domain.Rental, error)
	CreateRental(ctx context.Context, in CreateRentalInput, caller policy.Caller) (*domain.Rental, error)
	UpdateRental(ctx context.Context, in UpdateRentalInput, caller policy.Caller) (*domain.Rental, error)
	ReturnRental(ctx context.Context, id int32, caller policy.Caller) (*domain.Rental, error)
	DeleteRental(ctx context.Context, id int32, caller policy.Caller) error
}

type ToolService interface {
	CreateTool(ctx context.Context, tool *domain.Tool) error
	GetTool(ctx context.Context, id int32) (*domain.Tool, error)
	UpdateTool(ctx context.Context, tool *domain.Tool) error
	DeleteTool(ctx context.Context, id int32) error
	ListTools(ctx context.Context) ([]domain.Tool, error)
	ListAvailableTools(ctx context.Context) ([]domain.Tool, error)
	FilterTools(ctx context.Context, category string, status domain.ToolStatus, onlyAvailable bool) ([]domain.Tool, error)
	ListCategories(ctx context.Context) ([]string, error)

	// AdjustStock applies a manual admin correction to a tool's stock.
	// Negative deltas go through the ledger's conditional reserve and
	// fail with InsufficientStock instead of driving stock below zero.
	AdjustStock(ctx context.Context, toolID, delta int32) (*domain.Tool, error)
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomer(ctx context.Context, id int32) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer *domain.Customer) error
	DeleteCustomer(ctx context.Context, id int32) error
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Register(ctx context.Context, name, email, phone, password string) (*domain.User, error)

	// EnsureSeedUsers provisions the bootstrap admin and member
	// identities if absent. Idempotent; run once at process start.
	EnsureSeedUsers(ctx context.Context) error
}

type AdminSummaryService interface {
	GetSummary(ctx context.Context) (*repository.Summary, error)
	TopTools(ctx context.Context, from, to *time.Time, take int32) ([]repository.TopTool, error)
}

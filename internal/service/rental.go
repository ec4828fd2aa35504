package service

import (
	"context"
	"fmt"
	"time"

	"toolirent/internal/domain"
	"toolirent/internal/logger"
	"toolirent/internal/policy"
	"toolirent/internal/repository"
)

type rentalService struct {
	rentalRepo   repository.RentalRepository
	toolRepo     repository.ToolRepository
	customerRepo repository.CustomerRepository
	startGrace   time.Duration
}

// NewRentalService builds the rental lifecycle service. startGrace is
// how far in the past a new rental's start date may lie.
func NewRentalService(
	rentalRepo repository.RentalRepository,
	toolRepo repository.ToolRepository,
	customerRepo repository.CustomerRepository,
	startGrace time.Duration,
) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		toolRepo:     toolRepo,
		customerRepo: customerRepo,
		startGrace:   startGrace,
	}
}

func (s *rentalService) ListRentals(ctx context.Context, caller policy.Caller) ([]domain.Rental, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	return s.rentalRepo.List(ctx)
}

func (s *rentalService) GetRental(ctx context.Context, id int32, caller policy.Caller) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(rt, caller) {
		return nil, domain.ErrForbidden
	}
	return rt, nil
}

func (s *rentalService) CreateRental(ctx context.Context, in CreateRentalInput, caller policy.Caller) (*domain.Rental, error) {
	if err := validateDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if in.StartDate.Before(time.Now().Add(-s.startGrace)) {
		return nil, domain.Validationf("start date %s is in the past", in.StartDate.Format("2006-01-02"))
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, in.CustomerID, caller)
	if err != nil {
		return nil, err
	}
	if !policy.CanCreateFor(customer.Email, caller) {
		return nil, domain.ErrForbidden
	}
	if !customer.IsActive {
		return nil, domain.Validationf("customer %d is not active", customer.ID)
	}

	if err := s.checkToolsExist(ctx, in.Lines); err != nil {
		return nil, err
	}

	rt := &domain.Rental{
		CustomerID: customer.ID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Details:    linesToDetails(in.Lines),
	}
	if err := s.rentalRepo.CreateWithReservations(ctx, rt); err != nil {
		return nil, err
	}
	rt.Customer = customer

	logger.Info("rental created", "rental_id", rt.ID, "customer_id", customer.ID, "lines", len(rt.Details))
	return rt, nil
}

func (s *rentalService) UpdateRental(ctx context.Context, in UpdateRentalInput, caller policy.Caller) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, in.RentalID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(rt, caller) {
		return nil, domain.ErrForbidden
	}
	if rt.IsReturned {
		return nil, domain.ErrInvalidState
	}

	if err := validateDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	if err := s.checkToolsExist(ctx, in.Lines); err != nil {
		return nil, err
	}

	rt.StartDate = in.StartDate
	rt.EndDate = in.EndDate
	rt.Details = linesToDetails(in.Lines)
	if err := s.rentalRepo.UpdateWithAdjustments(ctx, rt); err != nil {
		return nil, err
	}

	logger.Info("rental updated", "rental_id", rt.ID)
	return rt, nil
}

func (s *rentalService) ReturnRental(ctx context.Context, id int32, caller policy.Caller) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(rt, caller) {
		return nil, domain.ErrForbidden
	}
	if rt.IsReturned {
		return nil, domain.ErrInvalidState
	}

	// The repository re-checks the returned flag inside its transaction,
	// so a racing second return still credits stock only once.
	if err := s.rentalRepo.MarkReturned(ctx, id); err != nil {
		return nil, err
	}
	rt.IsReturned = true

	logger.Info("rental returned", "rental_id", id)
	return rt, nil
}

func (s *rentalService) DeleteRental(ctx context.Context, id int32, caller policy.Caller) error {
	if !caller.IsAdmin {
		return domain.ErrForbidden
	}
	if err := s.rentalRepo.DeleteWithReleases(ctx, id); err != nil {
		return err
	}
	logger.Info("rental deleted", "rental_id", id)
	return nil
}

// resolveCustomer picks the customer a rental is created for. Admins
// may name any customer; members always rent for the customer linked to
// their own email, and naming anyone else is an authorization failure.
func (s *rentalService) resolveCustomer(ctx context.Context, customerID int32, caller policy.Caller) (*domain.Customer, error) {
	if caller.IsAdmin {
		if customerID == 0 {
			return nil, domain.Validationf("customer id is required")
		}
		return s.customerRepo.GetByID(ctx, customerID)
	}

	own, err := s.customerRepo.GetByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	if customerID != 0 && customerID != own.ID {
		return nil, domain.ErrForbidden
	}
	return own, nil
}

func (s *rentalService) checkToolsExist(ctx context.Context, lines []RentalLineInput) error {
	for _, line := range lines {
		if _, err := s.toolRepo.GetByID(ctx, line.ToolID); err != nil {
			return fmt.Errorf("tool %d: %w", line.ToolID, err)
		}
	}
	return nil
}

func validateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.Validationf("start and end dates are required")
	}
	if !end.After(start) {
		return domain.Validationf("end date must be after start date")
	}
	return nil
}

func validateLines(lines []RentalLineInput) error {
	if len(lines) == 0 {
		return domain.Validationf("at least one rental line is required")
	}
	seen := make(map[int32]bool, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.Validationf("quantity for tool %d must be positive", line.ToolID)
		}
		if seen[line.ToolID] {
			return domain.Validationf("duplicate line for tool %d", line.ToolID)
		}
		seen[line.ToolID] = true
	}
	return nil
}

func linesToDetails(lines []RentalLineInput) []domain.RentalDetail {
	details := make([]domain.RentalDetail, len(lines))
	for i, line := range lines {
		details[i] = domain.RentalDetail{ToolID: line.ToolID, Quantity: line.Quantity}
	}
	return details
}

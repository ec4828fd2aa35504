package repository

import (
	"context"
	"time"

	"toolirent/internal/domain"
)

// RentalRepository persists Rental aggregates together with the tool
// stock effects they imply. Every mutating method is a single unit of
// work: the rental write and all stock writes commit or abort together,
// and the stock deltas are re-derived inside the transaction so the
// ledger invariant holds under concurrent requests.
type RentalRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	List(ctx context.Context) ([]domain.Rental, error)

	// CreateWithReservations inserts the rental and its detail lines and
	// decrements stock for every line. Fails with InsufficientStockError
	// when any line exceeds the tool's available stock; no partial stock
	// mutation persists.
	CreateWithReservations(ctx context.Context, rental *domain.Rental) error

	// UpdateWithAdjustments replaces the rental's dates and detail lines,
	// applying only the stock delta between the old and new lines.
	// Fails with domain.ErrInvalidState if the rental is already returned.
	UpdateWithAdjustments(ctx context.Context, rental *domain.Rental) error

	// MarkReturned flips is_returned and credits stock back for every
	// detail line, exactly once. Fails with domain.ErrInvalidState if the
	// rental was already returned.
	MarkReturned(ctx context.Context, id int32) error

	// DeleteWithReleases removes the rental and its lines. If the rental
	// is still active its stock effect is reversed first.
	DeleteWithReleases(ctx context.Context, id int32) error
}

// ToolRepository owns the tool catalog and the inventory ledger
// operations on its stock counters.
type ToolRepository interface {
	Create(ctx context.Context, tool *domain.Tool) error
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	Update(ctx context.Context, tool *domain.Tool) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.Tool, error)
	ListAvailable(ctx context.Context) ([]domain.Tool, error)
	Filter(ctx context.Context, category string, status domain.ToolStatus, onlyAvailable bool) ([]domain.Tool, error)
	ListCategories(ctx context.Context) ([]string, error)

	// TryReserve atomically checks stock >= quantity and decrements it.
	// Two concurrent reservations for the last unit must not both succeed.
	TryReserve(ctx context.Context, toolID, quantity int32) error

	// Release credits quantity back to stock. It always succeeds for an
	// existing tool.
	Release(ctx context.Context, toolID, quantity int32) error
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.Customer, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Delete(ctx context.Context, id int32) error
}

// TopTool is one row of the most-rented ranking.
type TopTool struct {
	ToolID        int32  `json:"tool_id"`
	Name          string `json:"name"`
	TotalQuantity int32  `json:"total_quantity"`
}

// Summary holds the admin dashboard totals.
type Summary struct {
	ActiveRentals int32 `json:"active_rentals"`
	TotalRentals  int32 `json:"total_rentals"`
	TotalTools    int32 `json:"total_tools"`
	TotalStock    int32 `json:"total_stock"`
}

// SummaryRepository serves the read-only admin statistics.
type SummaryRepository interface {
	GetSummary(ctx context.Context) (*Summary, error)

	// TopTools ranks tools by summed detail quantity across rentals whose
	// date range intersects the optional [from, to] window. Ties break by
	// tool id ascending.
	TopTools(ctx context.Context, from, to *time.Time, limit int32) ([]TopTool, error)

	// ListOverdueRentals returns active rentals whose end date lies
	// before the given moment.
	ListOverdueRentals(ctx context.Context, now time.Time) ([]domain.Rental, error)
}

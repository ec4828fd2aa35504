package postgres

import (
	"database/sql"
	"errors"

	"toolirent/internal/domain"
	"toolirent/internal/repository"

	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.ToolRepository
	repository.CustomerRepository
	repository.RentalRepository
	repository.UserRepository
	repository.SummaryRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		ToolRepository:     NewToolRepository(db),
		CustomerRepository: NewCustomerRepository(db),
		RentalRepository:   NewRentalRepository(db),
		UserRepository:     NewUserRepository(db),
		SummaryRepository:  NewSummaryRepository(db),
	}
}

// mapError translates driver-level failures into the domain taxonomy.
// Anything not recognized is a persistence outage and passes through
// unmodified.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return domain.ErrConcurrencyConflict
		case "23505": // unique_violation
			return domain.Validationf("duplicate value for unique column: %s", pqErr.Constraint)
		case "23514": // check_violation, backstop for the stock >= 0 CHECK
			return domain.ErrInsufficientStock
		case "23503": // foreign_key_violation
			return domain.ErrNotFound
		}
	}
	return err
}

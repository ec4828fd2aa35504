package domain

import (
	"errors"
	"fmt"
)

// Expected, locally classified outcomes of lifecycle operations. The
// HTTP layer maps these to status codes; anything else is treated as a
// persistence failure and propagated unmodified.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrConcurrencyConflict = errors.New("concurrent modification, retry the operation")
)

// InsufficientStockError carries the offending tool and the shortfall
// so the caller learns which line failed.
type InsufficientStockError struct {
	ToolID    int32
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for tool %d: requested %d, available %d",
		e.ToolID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Shortfall is the number of units missing to satisfy the request.
func (e *InsufficientStockError) Shortfall() int32 { return e.Requested - e.Available }

// Validationf wraps ErrValidation with a message describing the bad input.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

package domain

import "time"

// Rental is one rental transaction. It exclusively owns its detail
// lines: they are created and destroyed with the parent.
type Rental struct {
	ID         int32          `json:"id"`
	CustomerID int32          `json:"customer_id"`
	Customer   *Customer      `json:"customer,omitempty"` // Populated when fetching rental details
	StartDate  time.Time      `json:"start_date"`
	EndDate    time.Time      `json:"end_date"`
	IsReturned bool           `json:"is_returned"`
	Details    []RentalDetail `json:"details"`
	CreatedOn  time.Time      `json:"created_on"`
	UpdatedOn  time.Time      `json:"updated_on"`
}

// RentalDetail reserves Quantity units of ToolID for the parent
// rental's duration.
type RentalDetail struct {
	ID       int32 `json:"id"`
	RentalID int32 `json:"rental_id"`
	ToolID   int32 `json:"tool_id"`
	Quantity int32 `json:"quantity"`
}

// IsActive reports whether the rental still holds its stock reservation.
func (r *Rental) IsActive() bool {
	return !r.IsReturned
}

// QuantityByTool returns the reserved quantity per tool id.
func (r *Rental) QuantityByTool() map[int32]int32 {
	out := make(map[int32]int32, len(r.Details))
	for _, d := range r.Details {
		out[d.ToolID] += d.Quantity
	}
	return out
}

package domain

import "time"

type ToolStatus string

const (
	ToolStatusAvailable ToolStatus = "AVAILABLE"
	ToolStatusRented    ToolStatus = "RENTED"
	ToolStatusBroken    ToolStatus = "BROKEN"
)

// ValidToolStatus reports whether s is one of the known statuses.
func ValidToolStatus(s ToolStatus) bool {
	switch s {
	case ToolStatusAvailable, ToolStatusRented, ToolStatusBroken:
		return true
	}
	return false
}

type Tool struct {
	ID            int32      `json:"id"`
	Name          string     `json:"name"`
	PriceCents    int32      `json:"price_cents"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	CatalogNumber string     `json:"catalog_number"`
	Stock         int32      `json:"stock"`
	Status        ToolStatus `json:"status"`
	CreatedOn     time.Time  `json:"created_on"`
	UpdatedOn     time.Time  `json:"updated_on"`
}

// IsAvailable is derived from stock and status. It is intentionally not
// a stored column: stock is the single source of truth for availability.
func (t *Tool) IsAvailable() bool {
	return t.Stock > 0 && t.Status != ToolStatusBroken
}

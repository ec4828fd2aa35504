// Package policy decides whether a caller may view or mutate a rental.
// Pure functions, no side effects, no I/O: the lifecycle service invokes
// the policy before any mutation and the transport layer only supplies
// the caller's claims.
package policy

import "toolirent/internal/domain"

// Caller is the authenticated identity extracted from the request.
type Caller struct {
	Email   string
	IsAdmin bool
}

// CanAccess reports whether the caller may view or mutate the rental.
// Admins always may; members only when they own the rental's customer.
func CanAccess(rental *domain.Rental, caller Caller) bool {
	if caller.IsAdmin {
		return true
	}
	return rental.Customer != nil && rental.Customer.Email == caller.Email
}

// CanCreateFor reports whether the caller may create a rental on behalf
// of the customer with the given email.
func CanCreateFor(customerEmail string, caller Caller) bool {
	return caller.IsAdmin || customerEmail == caller.Email
}

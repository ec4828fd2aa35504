package http

import (
	"net/http"

	"toolirent/internal/domain"
	"toolirent/internal/service"
)

type CustomerHandler struct {
	customers service.CustomerService
}

func NewCustomerHandler(customers service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListCustomers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	customer, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto customerDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	customer := &domain.Customer{
		Name:        dto.Name,
		Email:       dto.Email,
		PhoneNumber: dto.PhoneNumber,
		IsActive:    true,
	}
	if dto.IsActive != nil {
		customer.IsActive = *dto.IsActive
	}
	if err := h.customers.CreateCustomer(r.Context(), customer); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var dto customerDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	customer := &domain.Customer{
		ID:          id,
		Name:        dto.Name,
		Email:       dto.Email,
		PhoneNumber: dto.PhoneNumber,
		IsActive:    true,
	}
	if dto.IsActive != nil {
		customer.IsActive = *dto.IsActive
	}
	if err := h.customers.UpdateCustomer(r.Context(), customer); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.customers.DeleteCustomer(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"net/http"
	"strconv"

	"toolirent/internal/domain"
	"toolirent/internal/service"

	"github.com/gorilla/mux"
)

type RentalHandler struct {
	rentals service.RentalService
}

func NewRentalHandler(rentals service.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("invalid id %q", raw)
	}
	return int32(id), nil
}

// List returns all rentals. Admin only.
func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	rentals, err := h.rentals.ListRentals(r.Context(), caller)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	rental, err := h.rentals.GetRental(r.Context(), id, caller)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto rentalCreateDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	in, err := dto.toInput()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	rental, err := h.rentals.CreateRental(r.Context(), in, caller)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (h *RentalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var dto rentalUpdateDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	in, err := dto.toInput(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	rental, err := h.rentals.UpdateRental(r.Context(), in, caller)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	rental, err := h.rentals.ReturnRental(r.Context(), id, caller)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

// Delete removes a rental. Admin only; active rentals have their stock
// effect reversed before removal.
func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	if err := h.rentals.DeleteRental(r.Context(), id, caller); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

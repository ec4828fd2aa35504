package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"toolirent/internal/domain"
	"toolirent/internal/logger"
	"toolirent/internal/service"
)

type errorResponse struct {
	Error     string `json:"error"`
	ToolID    int32  `json:"tool_id,omitempty"`
	Shortfall int32  `json:"shortfall,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the error taxonomy to transport status codes.
// Unclassified errors are persistence failures: logged and surfaced as
// an opaque 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:     stockErr.Error(),
			ToolID:    stockErr.ToolID,
			Shortfall: stockErr.Shortfall(),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("unexpected error",
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

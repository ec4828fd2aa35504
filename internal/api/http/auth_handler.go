package http

import (
	"net/http"

	"toolirent/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var dto loginDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	token, user, err := h.auth.Login(r.Context(), dto.Email, dto.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"email": user.Email,
		"role":  user.Role,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var dto registerDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	user, err := h.auth.Register(r.Context(), dto.Name, dto.Email, dto.PhoneNumber, dto.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Me reports the identity the request is authenticated as.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":    caller.Email,
		"is_admin": caller.IsAdmin,
	})
}

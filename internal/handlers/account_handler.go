package handlers

import (
	"net/http"

	"reporthub/internal/models"
	"reporthub/internal/service"
)

// AccountHandler lets super admins manage the other admin accounts
type AccountHandler struct {
	authService *service.AuthService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *service.AuthService) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// List returns every admin account
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.authService.ListAdmins(r.Context(), GetUserFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Error listing accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

// SetRole promotes or demotes an account
func (h *AccountHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req struct {
		Role models.AdminRole `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.authService.SetAdminRole(r.Context(), GetUserFromContext(r.Context()), id, req.Role); err != nil {
		respondWithServiceError(w, "Error changing account role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendPasswordReset emails a reset link to an account
func (h *AccountHandler) SendPasswordReset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.authService.SendPasswordResetFor(r.Context(), GetUserFromContext(r.Context()), id); err != nil {
		respondWithServiceError(w, "Error sending password reset", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

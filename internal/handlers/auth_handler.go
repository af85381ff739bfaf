package handlers

import (
	"net/http"

	"reporthub/internal/models"
	"reporthub/internal/security"
	"reporthub/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	pushService          *service.PushService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler. pushService may be nil.
func NewAuthHandler(authService *service.AuthService, pushService *service.PushService, csrf *security.CSRFGenerator,
	oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		pushService:          pushService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type meResponse struct {
	User         *models.User `json:"user"`
	IsAdmin      bool         `json:"is_admin"`
	IsSuperAdmin bool         `json:"is_super_admin"`
	CSRFToken    string       `json:"csrf_token"`
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, status int, session *models.Session, user *models.User) {
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	token, _ := h.csrf.GenerateToken(session.ID)
	writeJSON(w, status, meResponse{
		User:         user,
		IsAdmin:      h.authService.IsAdmin(r.Context(), user),
		IsSuperAdmin: h.authService.IsSuperAdmin(r.Context(), user),
		CSRFToken:    token,
	})
}

// Login handles email and password login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}
	h.respondWithSession(w, r, http.StatusOK, session, user)
}

// Signup creates an account for an allowlisted email and signs it in
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.Name); err != nil {
		respondWithServiceError(w, "Error creating account", err)
		return
	}
	session, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in after signup", err)
		return
	}
	h.respondWithSession(w, r, http.StatusCreated, session, user)
}

// Logout ends the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if user, err := h.authService.ValidateSession(r.Context(), cookie.Value); err == nil && h.pushService != nil {
			h.pushService.Forget(service.PushSession{UserEmail: user.Email})
		}
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			respondWithServiceError(w, "Error logging out", err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account with its current privileges
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	sessionID, _ := r.Context().Value(SessionContextKey).(string)
	token, _ := h.csrf.GenerateToken(sessionID)

	writeJSON(w, http.StatusOK, meResponse{
		User:         user,
		IsAdmin:      h.authService.IsAdmin(r.Context(), user),
		IsSuperAdmin: h.authService.IsSuperAdmin(r.Context(), user),
		CSRFToken:    token,
	})
}

// ForgotPassword emails a reset link. The response never reveals whether
// the address has an account.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error requesting password reset", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ResetPassword sets a new password from an emailed token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondWithServiceError(w, "Error resetting password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"reporthub/internal/service"
	"reporthub/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	writeJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps a service error to its HTTP status. Only
// unexpected failures are logged.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
		return
	}

	status, msg := statusForError(err)
	if status >= http.StatusInternalServerError {
		respondWithError(w, status, msg, logMsg, err)
		return
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusForError returns the HTTP status and user message for err
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Correo o contraseña incorrectos"
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized, ErrUnauthorized
	case errors.Is(err, service.ErrNotAllowlisted):
		return http.StatusForbidden, "Este correo no está autorizado como administrador"
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, "Permiso de notificaciones denegado"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, ErrForbidden
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "Ya existe una cuenta con este correo"
	case errors.Is(err, service.ErrLastSuperAdmin):
		return http.StatusConflict, "Debe quedar al menos un super administrador"
	case errors.Is(err, service.ErrInvalidResetToken):
		return http.StatusBadRequest, "El enlace de recuperación no es válido o ha vencido"
	case errors.Is(err, service.ErrPushDisabled):
		return http.StatusServiceUnavailable, "Las notificaciones no están configuradas"
	case errors.Is(err, service.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, ErrServiceUnavailable
	}
	return http.StatusInternalServerError, ErrInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return false
	}
	return true
}

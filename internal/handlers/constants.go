package handlers

const (
	SessionCookieName = "session_id"
	CSRFHeaderName    = "X-CSRF-Token"

	ErrInvalidRequestBody  = "Solicitud inválida"
	ErrUnauthorized        = "No autorizado"
	ErrForbidden           = "Acceso denegado"
	ErrNotFound            = "No encontrado"
	ErrInternalServerError = "Error interno del servidor"
	ErrServiceUnavailable  = "Servicio no disponible, inténtelo más tarde"

	// maxBodyBytes bounds every JSON request body
	maxBodyBytes = 1 << 20
)

package handlers

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"reporthub/internal/service"
)

// ReportHandler serves the report form and the administrator report views
type ReportHandler struct {
	reports *service.ReportService
	export  *service.ExportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService, export *service.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, export: export}
}

// submitRequest is the public form. Email and PushEndpoint identify the
// browser so its push subscriptions can be marked as reported.
type submitRequest struct {
	service.ReportInput
	Email        string `json:"email"`
	PushEndpoint string `json:"push_endpoint"`
}

// Superintendents lists the superintendents a member chooses from
func (h *ReportHandler) Superintendents(w http.ResponseWriter, r *http.Request) {
	sups, err := h.reports.Superintendents(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing superintendents", err)
		return
	}
	writeJSON(w, http.StatusOK, sups)
}

// Submit stores a member's monthly report
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session := service.PushSession{UserEmail: req.Email, Endpoint: req.PushEndpoint}
	rep, err := h.reports.Submit(r.Context(), session, req.ReportInput)
	if err != nil {
		respondWithServiceError(w, "Error submitting report", err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

// List returns the reports matching the query filter
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := reportFilter(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	reports, err := h.reports.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing reports", err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// Update applies administrator corrections to a report
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var in service.ReportInput
	if !decodeJSON(w, r, &in) {
		return
	}
	rep, err := h.reports.Update(r.Context(), id, in)
	if err != nil {
		respondWithServiceError(w, "Error updating report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Review marks a report as reviewed
func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.reports.MarkReviewed(r.Context(), id); err != nil {
		respondWithServiceError(w, "Error reviewing report", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a report
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.reports.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, "Error deleting report", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear removes every report
func (h *ReportHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.reports.ClearAll(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error clearing reports", err)
		return
	}
	log.Printf("Reports cleared by %s", GetUserFromContext(r.Context()).Email)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// Export downloads the filtered reports as an xlsx workbook
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := reportFilter(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	filename := h.export.Filename(r.URL.Query().Get("name"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))

	if _, err := h.export.Export(r.Context(), w, filter); err != nil {
		w.Header().Del("Content-Disposition")
		respondWithServiceError(w, "Error exporting reports", err)
		return
	}
}

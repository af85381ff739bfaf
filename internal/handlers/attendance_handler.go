package handlers

import (
	"net/http"
	"time"

	"reporthub/internal/service"
)

// AttendanceHandler serves meeting attendance
type AttendanceHandler struct {
	attendance *service.AttendanceService
	now        func() time.Time
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, now: time.Now}
}

// List returns the records of ?month=&year=, or every record
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := queryPeriod(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	records, err := h.attendance.List(r.Context(), p)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Record stores the attendance of one meeting
func (h *AttendanceHandler) Record(w http.ResponseWriter, r *http.Request) {
	var in service.AttendanceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	rec, err := h.attendance.Record(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, "Error recording attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Delete removes one record
func (h *AttendanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.attendance.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, "Error deleting attendance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats summarizes a month, by default the previous one
func (h *AttendanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	p, err := periodOrPrevious(r, h.now())
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	stats, err := h.attendance.Stats(r.Context(), p)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error computing attendance stats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period": p,
		"stats":  stats,
	})
}

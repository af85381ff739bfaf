package handlers

import (
	"net/http"
	"time"

	"reporthub/internal/roster"
	"reporthub/internal/service"
)

// RosterHandler serves reconciliation and roster overrides
type RosterHandler struct {
	roster *service.RosterService
	now    func() time.Time
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(rosterService *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: rosterService, now: time.Now}
}

// Reconciliation compares the period's reports against the roster.
// The period defaults to the month before the current one.
func (h *RosterHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	p, err := periodOrPrevious(r, h.now())
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	rep, err := h.roster.Reconcile(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, "Error reconciling reports", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Members lists administrator-added roster members
func (h *RosterHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.roster.CustomMembers(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing roster members", err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// AddMember adds someone to the roster
func (h *RosterHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName    string `json:"full_name"`
		GroupNumber int    `json:"group_number"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.roster.AddToRoster(r.Context(), req.FullName, req.GroupNumber); err != nil {
		respondWithServiceError(w, "Error adding roster member", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemoveMember deactivates an administrator-added member
func (h *RosterHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.RemoveFromRoster(r.Context(), id); err != nil {
		respondWithServiceError(w, "Error removing roster member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Mappings lists the name mappings
func (h *RosterHandler) Mappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.roster.Mappings(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing name mappings", err)
		return
	}
	writeJSON(w, http.StatusOK, mappings)
}

// SetMapping attributes a submitter name to a roster member
func (h *RosterHandler) SetMapping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Alias             string `json:"alias"`
		CanonicalFullName string `json:"canonical_full_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.roster.SetMapping(r.Context(), req.Alias, req.CanonicalFullName); err != nil {
		respondWithServiceError(w, "Error saving name mapping", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"alias_normalized":    roster.Normalize(req.Alias),
		"canonical_full_name": req.CanonicalFullName,
	})
}

// DeleteMapping removes a name mapping
func (h *RosterHandler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.DeleteMapping(r.Context(), r.PathValue("alias")); err != nil {
		respondWithServiceError(w, "Error deleting name mapping", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFlag records a decision about a report
func (h *RosterHandler) SetFlag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reportId")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var in service.FlagInput
	if !decodeJSON(w, r, &in) {
		return
	}
	flag, err := h.roster.SetFlag(r.Context(), id, in)
	if err != nil {
		respondWithServiceError(w, "Error saving report flag", err)
		return
	}
	writeJSON(w, http.StatusOK, flag)
}

// DeleteFlag removes the decision about a report
func (h *RosterHandler) DeleteFlag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reportId")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.DeleteFlag(r.Context(), id); err != nil {
		respondWithServiceError(w, "Error deleting report flag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package models

import (
	"strconv"
	"time"
)

// Role is the service role a member reports under
type Role string

const (
	RolePublicador        Role = "publicador"
	RolePrecursorAuxiliar Role = "precursor_auxiliar"
	RolePrecursorRegular  Role = "precursor_regular"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RolePublicador, RolePrecursorAuxiliar, RolePrecursorRegular:
		return true
	}
	return false
}

// IsPrecursor reports whether hours and bible courses apply to the role
func (r Role) IsPrecursor() bool {
	return r == RolePrecursorAuxiliar || r == RolePrecursorRegular
}

// Label returns the display name used in exports
func (r Role) Label() string {
	switch r {
	case RolePublicador:
		return "Publicador"
	case RolePrecursorAuxiliar:
		return "Precursor Auxiliar"
	case RolePrecursorRegular:
		return "Precursor Regular"
	}
	return string(r)
}

// ReportStatus tracks administrator review of a report
type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusReviewed ReportStatus = "reviewed"
	StatusEdited   ReportStatus = "edited"
)

// ServiceReport is one monthly report as submitted by a member
type ServiceReport struct {
	ID               int64        `json:"id"`
	FullName         string       `json:"full_name"`
	Role             Role         `json:"role"`
	Participated     bool         `json:"participated"`
	Hours            *int         `json:"hours,omitempty"`
	BibleCourses     *int         `json:"bible_courses,omitempty"`
	SuperintendentID *int64       `json:"superintendent_id,omitempty"`
	Notes            string       `json:"notes"`
	Month            string       `json:"month"`
	Year             int          `json:"year"`
	Status           ReportStatus `json:"status"`
	SubmittedAt      time.Time    `json:"submitted_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	// Joined from superintendents; GroupNumber is 0 when no superintendent is set
	SuperintendentName string `json:"superintendent_name,omitempty"`
	GroupNumber        int    `json:"group_number,omitempty"`
}

// Period returns the reporting period of the report
func (r *ServiceReport) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

// ReportFilter narrows a report listing. Zero values match everything.
type ReportFilter struct {
	Period       *Period
	Search       string
	Role         Role
	Participated *bool
	GroupNumber  int
}

// Superintendent leads one service group
type Superintendent struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	GroupNumber int       `json:"group_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName is the label shown next to a report
func (s *Superintendent) DisplayName() string {
	return s.Name + " Grupo " + strconv.Itoa(s.GroupNumber)
}

package models

import "time"

// RosterMember is a person expected to report every period
type RosterMember struct {
	FullName    string `json:"full_name" yaml:"name"`
	GroupNumber int    `json:"group_number" yaml:"group"`
}

// CustomMember is a roster entry added by an administrator. Inactive entries
// are kept for history and ignored when the roster is built.
type CustomMember struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	NameKey     string    `json:"name_key"`
	GroupNumber int       `json:"group_number"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NameMapping attributes a misspelled submitter name to a roster member
type NameMapping struct {
	ID                int64     `json:"id"`
	AliasNormalized   string    `json:"alias_normalized"`
	CanonicalFullName string    `json:"canonical_full_name"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ReportFlag is an administrator decision about a single report
type ReportFlag struct {
	ID                int64     `json:"id"`
	ReportID          int64     `json:"report_id"`
	IsDuplicate       bool      `json:"is_duplicate"`
	CanonicalFullName *string   `json:"canonical_full_name,omitempty"`
	Note              string    `json:"note"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

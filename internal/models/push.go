package models

import "time"

// PushSubscription is one browser or device registration for Web Push
type PushSubscription struct {
	ID              int64     `json:"id"`
	Endpoint        string    `json:"endpoint"`
	P256dhKey       string    `json:"p256dh_key"`
	AuthKey         string    `json:"auth_key"`
	SubscriberName  string    `json:"subscriber_name"`
	UserEmail       string    `json:"user_email,omitempty"`
	IsActive        bool      `json:"is_active"`
	LastReportMonth string    `json:"last_report_month,omitempty"`
	LastReportYear  int       `json:"last_report_year,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ReportedFor reports whether the subscription was marked as reported for p
func (s *PushSubscription) ReportedFor(p Period) bool {
	return s.LastReportMonth != "" && p.Matches(s.LastReportMonth, s.LastReportYear)
}

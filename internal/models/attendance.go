package models

import "time"

// MeetingType distinguishes the midweek and weekend meetings
type MeetingType string

const (
	MeetingWeekday MeetingType = "entre_semana"
	MeetingWeekend MeetingType = "fin_semana"
)

// Valid reports whether t is a known meeting type
func (t MeetingType) Valid() bool {
	return t == MeetingWeekday || t == MeetingWeekend
}

// AttendanceRecord is the attendee count of one meeting
type AttendanceRecord struct {
	ID          int64       `json:"id"`
	MeetingDate time.Time   `json:"meeting_date"`
	MeetingType MeetingType `json:"meeting_type"`
	Attendees   int         `json:"attendees"`
	Month       string      `json:"month"`
	Year        int         `json:"year"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AttendanceStats summarizes one month of attendance
type AttendanceStats struct {
	WeekdayAvg   int `json:"weekday_avg"`
	WeekendAvg   int `json:"weekend_avg"`
	TotalMonthly int `json:"total_monthly"`
	GeneralAvg   int `json:"general_avg"`
	Meetings     int `json:"meetings"`
}

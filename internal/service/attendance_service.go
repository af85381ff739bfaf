package service

import (
	"context"
	"math"
	"time"

	"reporthub/internal/models"
	"reporthub/internal/repository"
	"reporthub/internal/validation"
)

// AttendanceInput is one meeting count as entered by an administrator
type AttendanceInput struct {
	MeetingDate string `json:"meeting_date"`
	MeetingType string `json:"meeting_type"`
	Attendees   int    `json:"attendees"`
}

// AttendanceService records meeting attendance
type AttendanceService struct {
	repo *repository.AttendanceRepository
}

func NewAttendanceService(repo *repository.AttendanceRepository) *AttendanceService {
	return &AttendanceService{repo: repo}
}

// Record stores the attendance of one meeting; the period follows from the date
func (s *AttendanceService) Record(ctx context.Context, in AttendanceInput) (*models.AttendanceRecord, error) {
	day, err := time.Parse("2006-01-02", in.MeetingDate)
	if err != nil {
		return nil, validation.ValidationError{Field: "meeting_date", Message: "date must be YYYY-MM-DD"}
	}
	meetingType := models.MeetingType(in.MeetingType)
	if !meetingType.Valid() {
		return nil, validation.ValidationError{Field: "meeting_type", Message: "unknown meeting type"}
	}
	if in.Attendees < 0 {
		return nil, validation.ValidationError{Field: "attendees", Message: "attendees cannot be negative"}
	}

	p := models.PeriodOf(day)
	rec := &models.AttendanceRecord{
		MeetingDate: day,
		MeetingType: meetingType,
		Attendees:   in.Attendees,
		Month:       p.Month,
		Year:        p.Year,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the records of p, or all records when p is nil
func (s *AttendanceService) List(ctx context.Context, p *models.Period) ([]models.AttendanceRecord, error) {
	return s.repo.List(ctx, p)
}

// Delete removes one record
func (s *AttendanceService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Stats summarizes the attendance of p
func (s *AttendanceService) Stats(ctx context.Context, p models.Period) (models.AttendanceStats, error) {
	records, err := s.repo.List(ctx, &p)
	if err != nil {
		return models.AttendanceStats{}, err
	}
	return AttendanceStatsOf(records), nil
}

// AttendanceStatsOf computes rounded averages per meeting type and overall
func AttendanceStatsOf(records []models.AttendanceRecord) models.AttendanceStats {
	var weekdaySum, weekdayN, weekendSum, weekendN int
	for _, r := range records {
		switch r.MeetingType {
		case models.MeetingWeekday:
			weekdaySum += r.Attendees
			weekdayN++
		case models.MeetingWeekend:
			weekendSum += r.Attendees
			weekendN++
		}
	}

	total := weekdaySum + weekendSum
	return models.AttendanceStats{
		WeekdayAvg:   roundedAvg(weekdaySum, weekdayN),
		WeekendAvg:   roundedAvg(weekendSum, weekendN),
		TotalMonthly: total,
		GeneralAvg:   roundedAvg(total, weekdayN+weekendN),
		Meetings:     weekdayN + weekendN,
	}
}

func roundedAvg(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

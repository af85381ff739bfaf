package service

import (
	"context"
	"errors"
	"testing"

	"reporthub/internal/models"
	"reporthub/internal/repository"
	"reporthub/internal/validation"
)

func TestAttendanceStatsOf(t *testing.T) {
	tests := []struct {
		name    string
		records []models.AttendanceRecord
		want    models.AttendanceStats
	}{
		{
			name: "empty month",
			want: models.AttendanceStats{},
		},
		{
			name: "both meetings",
			records: []models.AttendanceRecord{
				{MeetingType: models.MeetingWeekday, Attendees: 40},
				{MeetingType: models.MeetingWeekday, Attendees: 45},
				{MeetingType: models.MeetingWeekend, Attendees: 60},
				{MeetingType: models.MeetingWeekend, Attendees: 61},
			},
			want: models.AttendanceStats{WeekdayAvg: 43, WeekendAvg: 61, TotalMonthly: 206, GeneralAvg: 52, Meetings: 4},
		},
		{
			name: "weekend only",
			records: []models.AttendanceRecord{
				{MeetingType: models.MeetingWeekend, Attendees: 50},
			},
			want: models.AttendanceStats{WeekendAvg: 50, TotalMonthly: 50, GeneralAvg: 50, Meetings: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttendanceStatsOf(tt.records); got != tt.want {
				t.Errorf("AttendanceStatsOf() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAttendanceService(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewAttendanceService(repository.NewAttendanceRepository(db))

	rec, err := svc.Record(ctx, AttendanceInput{MeetingDate: "2025-03-05", MeetingType: "entre_semana", Attendees: 40})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.Month != "Marzo" || rec.Year != 2025 {
		t.Errorf("period = %s %d, want Marzo 2025", rec.Month, rec.Year)
	}

	// Same meeting again replaces the count
	if _, err := svc.Record(ctx, AttendanceInput{MeetingDate: "2025-03-05", MeetingType: "entre_semana", Attendees: 44}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if _, err := svc.Record(ctx, AttendanceInput{MeetingDate: "2025-03-09", MeetingType: "fin_semana", Attendees: 61}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if _, err := svc.Record(ctx, AttendanceInput{MeetingDate: "2025-04-02", MeetingType: "entre_semana", Attendees: 10}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	stats, err := svc.Stats(ctx, march2025)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := models.AttendanceStats{WeekdayAvg: 44, WeekendAvg: 61, TotalMonthly: 105, GeneralAvg: 53, Meetings: 2}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}

	all, err := svc.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List(nil) = %d records, want 3", len(all))
	}
}

func TestAttendanceRecordValidation(t *testing.T) {
	svc := NewAttendanceService(nil)

	tests := []struct {
		name  string
		in    AttendanceInput
		field string
	}{
		{"bad date", AttendanceInput{MeetingDate: "05/03/2025", MeetingType: "entre_semana"}, "meeting_date"},
		{"bad type", AttendanceInput{MeetingDate: "2025-03-05", MeetingType: "asamblea"}, "meeting_type"},
		{"negative attendees", AttendanceInput{MeetingDate: "2025-03-05", MeetingType: "fin_semana", Attendees: -1}, "attendees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.in)
			var verr validation.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("Record() error = %v, want ValidationError on %s", err, tt.field)
			}
		})
	}
}

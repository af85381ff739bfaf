package repository

import (
	"context"
	"fmt"

	"reporthub/internal/database"
	"reporthub/internal/models"
)

// AttendanceRepository handles database operations for meeting attendance
type AttendanceRepository struct {
	db database.DBTX
}

func NewAttendanceRepository(db database.DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert records the attendance of one meeting, replacing any earlier count
// for the same date and meeting type
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (meeting_date, meeting_type, attendees, month, year)
		VALUES (?, ?, ?, ?, ?)
	` + r.db.GetDialect().UpsertClause(
		[]string{"meeting_date", "meeting_type"},
		[]string{"attendees", "month", "year"},
	)
	if _, err := r.db.ExecContext(ctx, query,
		rec.MeetingDate.Format("2006-01-02"), rec.MeetingType, rec.Attendees, rec.Month, rec.Year,
	); err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	return nil
}

// List returns the records of one period, or every record when p is nil
func (r *AttendanceRepository) List(ctx context.Context, p *models.Period) ([]models.AttendanceRecord, error) {
	query := `SELECT id, meeting_date, meeting_type, attendees, month, year, created_at FROM attendance_records`
	var args []interface{}
	if p != nil {
		query += ` WHERE month = ? AND year = ?`
		args = append(args, p.Month, p.Year)
	}
	query += ` ORDER BY meeting_date, meeting_type`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.MeetingDate, &rec.MeetingType, &rec.Attendees, &rec.Month, &rec.Year, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes one attendance record
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM attendance_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

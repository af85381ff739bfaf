package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"reporthub/internal/database"
	"reporthub/internal/models"
)

// ReportRepository handles database operations for service reports
type ReportRepository struct {
	db database.DBTX
}

// NewReportRepository creates a new report repository
func NewReportRepository(db database.DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportSelect = `
	SELECT r.id, r.full_name, r.role, r.participated, r.hours, r.bible_courses,
	       r.superintendent_id, r.notes, r.month, r.year, r.status,
	       r.submitted_at, r.updated_at,
	       COALESCE(s.name, ''), COALESCE(s.group_number, 0)
	FROM service_reports r
	LEFT JOIN superintendents s ON s.id = r.superintendent_id
`

func scanReport(row interface{ Scan(...interface{}) error }) (*models.ServiceReport, error) {
	rep := &models.ServiceReport{}
	var hours, courses sql.NullInt64
	var superintendentID sql.NullInt64
	err := row.Scan(
		&rep.ID,
		&rep.FullName,
		&rep.Role,
		&rep.Participated,
		&hours,
		&courses,
		&superintendentID,
		&rep.Notes,
		&rep.Month,
		&rep.Year,
		&rep.Status,
		&rep.SubmittedAt,
		&rep.UpdatedAt,
		&rep.SuperintendentName,
		&rep.GroupNumber,
	)
	if err != nil {
		return nil, err
	}
	if hours.Valid {
		h := int(hours.Int64)
		rep.Hours = &h
	}
	if courses.Valid {
		c := int(courses.Int64)
		rep.BibleCourses = &c
	}
	if superintendentID.Valid {
		id := superintendentID.Int64
		rep.SuperintendentID = &id
	}
	return rep, nil
}

// Create inserts a report and fills in its ID and timestamps
func (r *ReportRepository) Create(ctx context.Context, rep *models.ServiceReport) error {
	now := time.Now()
	if rep.SubmittedAt.IsZero() {
		rep.SubmittedAt = now
	}
	if rep.Status == "" {
		rep.Status = models.StatusPending
	}
	rep.UpdatedAt = now

	query := `
		INSERT INTO service_reports (full_name, role, participated, hours, bible_courses,
			superintendent_id, notes, month, year, status, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		rep.FullName, rep.Role, rep.Participated, rep.Hours, rep.BibleCourses,
		rep.SuperintendentID, rep.Notes, rep.Month, rep.Year, rep.Status,
		rep.SubmittedAt, rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	rep.ID = id
	return nil
}

// Get retrieves a report with its superintendent
func (r *ReportRepository) Get(ctx context.Context, id int64) (*models.ServiceReport, error) {
	rep, err := scanReport(r.db.QueryRowContext(ctx, reportSelect+" WHERE r.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

// List retrieves reports matching filter, newest first
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.ServiceReport, error) {
	var where []string
	var args []interface{}

	if filter.Period != nil {
		where = append(where, "r.month = ? AND r.year = ?")
		args = append(args, filter.Period.Month, filter.Period.Year)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "LOWER(r.full_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if filter.Role != "" {
		where = append(where, "r.role = ?")
		args = append(args, filter.Role)
	}
	if filter.Participated != nil {
		where = append(where, "r.participated = ?")
		args = append(args, *filter.Participated)
	}
	if filter.GroupNumber > 0 {
		where = append(where, "s.group_number = ?")
		args = append(args, filter.GroupNumber)
	}

	query := reportSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.submitted_at DESC, r.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.ServiceReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *rep)
	}
	return reports, rows.Err()
}

// ListForPeriod retrieves every report of one period
func (r *ReportRepository) ListForPeriod(ctx context.Context, p models.Period) ([]models.ServiceReport, error) {
	return r.List(ctx, models.ReportFilter{Period: &p})
}

// Update overwrites the editable fields of a report and marks it edited
func (r *ReportRepository) Update(ctx context.Context, rep *models.ServiceReport) error {
	rep.Status = models.StatusEdited
	rep.UpdatedAt = time.Now()
	query := `
		UPDATE service_reports
		SET full_name = ?, role = ?, participated = ?, hours = ?, bible_courses = ?,
			superintendent_id = ?, notes = ?, month = ?, year = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		rep.FullName, rep.Role, rep.Participated, rep.Hours, rep.BibleCourses,
		rep.SuperintendentID, rep.Notes, rep.Month, rep.Year, rep.Status, rep.UpdatedAt,
		rep.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus changes only the review status of a report
func (r *ReportRepository) SetStatus(ctx context.Context, id int64, status models.ReportStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE service_reports SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set report status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a report; its flag goes with it
func (r *ReportRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM report_admin_report_flags WHERE report_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete report flag: %w", err)
	}
	result, err := r.db.ExecContext(ctx, "DELETE FROM service_reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every report and report flag, returning the number of reports removed
func (r *ReportRepository) DeleteAll(ctx context.Context) (int64, error) {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM report_admin_report_flags"); err != nil {
		return 0, fmt.Errorf("failed to clear report flags: %w", err)
	}
	result, err := r.db.ExecContext(ctx, "DELETE FROM service_reports")
	if err != nil {
		return 0, fmt.Errorf("failed to clear reports: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

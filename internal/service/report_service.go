package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"reporthub/internal/metrics"
	"reporthub/internal/models"
	"reporthub/internal/realtime"
	"reporthub/internal/repository"
	"reporthub/internal/validation"
)

// ChangePublisher announces report mutations to connected clients
type ChangePublisher interface {
	PublishReportChange(event string, id int64)
}

// ReportInput is a report as entered on the form or by an administrator
type ReportInput struct {
	FullName         string `json:"full_name"`
	Role             string `json:"role"`
	Participated     *bool  `json:"participated"`
	SuperintendentID *int64 `json:"superintendent_id"`
	Hours            *int   `json:"hours"`
	BibleCourses     *int   `json:"bible_courses"`
	Notes            string `json:"notes"`
	Month            string `json:"month"`
	Year             int    `json:"year"`
}

// ReportService handles service report business logic
type ReportService struct {
	reports         *repository.ReportRepository
	superintendents *repository.SuperintendentRepository
	push            *PushService
	events          ChangePublisher
	metrics         *metrics.Metrics
	now             func() time.Time
}

// NewReportService creates a new report service. push and events may be nil.
func NewReportService(reports *repository.ReportRepository, superintendents *repository.SuperintendentRepository,
	push *PushService, events ChangePublisher, m *metrics.Metrics) *ReportService {
	return &ReportService{
		reports:         reports,
		superintendents: superintendents,
		push:            push,
		events:          events,
		metrics:         m,
		now:             time.Now,
	}
}

// build validates in and turns it into a report row
func (s *ReportService) build(ctx context.Context, in ReportInput) (*models.ServiceReport, error) {
	role := models.Role(strings.TrimSpace(in.Role))
	if err := validation.ValidateReport(validation.ReportInput{
		FullName:         in.FullName,
		Role:             role,
		Participated:     in.Participated,
		SuperintendentID: in.SuperintendentID,
		Hours:            in.Hours,
		BibleCourses:     in.BibleCourses,
	}); err != nil {
		return nil, err
	}

	period := models.PreviousPeriod(s.now())
	if in.Month != "" || in.Year != 0 {
		p, err := models.NewPeriod(in.Month, in.Year)
		if err != nil {
			return nil, validation.ValidationError{Field: "month", Message: err.Error()}
		}
		period = p
	}

	superintendent, err := s.superintendents.Get(ctx, *in.SuperintendentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if superintendent == nil {
		return nil, validation.ValidationError{Field: "superintendent_id", Message: "Por favor seleccione su superintendente de servicio"}
	}

	rep := &models.ServiceReport{
		FullName:         strings.Join(strings.Fields(in.FullName), " "),
		Role:             role,
		Participated:     *in.Participated,
		SuperintendentID: &superintendent.ID,
		Notes:            strings.TrimSpace(in.Notes),
		Month:            period.Month,
		Year:             period.Year,

		SuperintendentName: superintendent.Name,
		GroupNumber:        superintendent.GroupNumber,
	}
	// Hours and bible courses only apply to pioneers
	if role.IsPrecursor() {
		rep.Hours = in.Hours
		rep.BibleCourses = in.BibleCourses
	}
	return rep, nil
}

// Submit stores a member's report, marks their push subscriptions as
// reported and notifies connected administrators
func (s *ReportService) Submit(ctx context.Context, session PushSession, in ReportInput) (*models.ServiceReport, error) {
	rep, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	rep.SubmittedAt = s.now()

	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	s.metrics.IncReportSubmitted()

	if s.push != nil {
		s.push.MarkAsReported(ctx, session, rep.Period(), rep.FullName)
	}
	s.publish(realtime.EventInsert, rep.ID)
	return rep, nil
}

// List returns reports matching filter, newest first
func (s *ReportService) List(ctx context.Context, filter models.ReportFilter) ([]models.ServiceReport, error) {
	return s.reports.List(ctx, filter)
}

// Get returns one report
func (s *ReportService) Get(ctx context.Context, id int64) (*models.ServiceReport, error) {
	rep, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrNotFound
	}
	return rep, nil
}

// Update overwrites a report with administrator corrections
func (s *ReportService) Update(ctx context.Context, id int64, in ReportInput) (*models.ServiceReport, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Month == "" && in.Year == 0 {
		in.Month, in.Year = existing.Month, existing.Year
	}

	rep, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	rep.ID = id
	rep.SubmittedAt = existing.SubmittedAt
	if err := s.reports.Update(ctx, rep); err != nil {
		return nil, err
	}
	s.metrics.IncReportMutation("update")
	s.publish(realtime.EventUpdate, id)
	return rep, nil
}

// MarkReviewed sets a report's status to reviewed
func (s *ReportService) MarkReviewed(ctx context.Context, id int64) error {
	if err := s.reports.SetStatus(ctx, id, models.StatusReviewed); err != nil {
		return err
	}
	s.metrics.IncReportMutation("review")
	s.publish(realtime.EventUpdate, id)
	return nil
}

// Delete removes a report
func (s *ReportService) Delete(ctx context.Context, id int64) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.IncReportMutation("delete")
	s.publish(realtime.EventDelete, id)
	return nil
}

// ClearAll removes every report. Callers restrict it to super admins.
func (s *ReportService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.reports.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("Cleared %d service reports", n)
	s.metrics.IncReportMutation("clear")
	s.publish(realtime.EventDelete, 0)
	return n, nil
}

// Superintendents lists the group superintendents members choose from
func (s *ReportService) Superintendents(ctx context.Context) ([]models.Superintendent, error) {
	return s.superintendents.List(ctx)
}

func (s *ReportService) publish(event string, id int64) {
	if s.events != nil {
		s.events.PublishReportChange(event, id)
	}
}

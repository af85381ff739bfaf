package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"reporthub/internal/database"
	"reporthub/internal/models"
	"reporthub/internal/realtime"
	"reporthub/internal/repository"
	"reporthub/internal/validation"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func int64Ptr(v int64) *int64 { return &v }

type change struct {
	event string
	id    int64
}

type fakePublisher struct {
	mu      sync.Mutex
	changes []change
}

func (p *fakePublisher) PublishReportChange(event string, id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change{event, id})
}

func (p *fakePublisher) last() change {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.changes) == 0 {
		return change{}
	}
	return p.changes[len(p.changes)-1]
}

// seedSuperintendent stores a superintendent for group and returns its ID
func seedSuperintendent(t *testing.T, db *database.DB, name string, group int) int64 {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewSuperintendentRepository(db)
	if err := repo.Upsert(ctx, name, group); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	sups, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, s := range sups {
		if s.GroupNumber == group {
			return s.ID
		}
	}
	t.Fatalf("superintendent for group %d not found", group)
	return 0
}

func newTestReportService(db *database.DB, push *PushService, events ChangePublisher) *ReportService {
	svc := NewReportService(repository.NewReportRepository(db), repository.NewSuperintendentRepository(db), push, events, nil)
	svc.now = func() time.Time { return time.Date(2025, time.April, 3, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestSubmitReport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	supID := seedSuperintendent(t, db, "Alberto G.", 1)

	store := newFakePushStore(models.PushSubscription{
		Endpoint: "https://push.example/a", IsActive: true,
	})
	push := NewPushService(store, NewFlagCache(DefaultFlagTTL), "key", false)
	events := &fakePublisher{}
	svc := newTestReportService(db, push, events)

	session := PushSession{Endpoint: "https://push.example/a"}
	rep, err := svc.Submit(ctx, session, ReportInput{
		FullName:         "  Lucía   Fernández ",
		Role:             "publicador",
		Participated:     boolPtr(true),
		SuperintendentID: int64Ptr(supID),
		Hours:            intPtr(12),
		Notes:            " ok ",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if rep.FullName != "Lucía Fernández" {
		t.Errorf("FullName = %q, want collapsed whitespace", rep.FullName)
	}
	if rep.Month != "Marzo" || rep.Year != 2025 {
		t.Errorf("period = %s %d, want previous month Marzo 2025", rep.Month, rep.Year)
	}
	if rep.Hours != nil {
		t.Error("Hours should be dropped for publicador")
	}
	if rep.Status != models.StatusPending {
		t.Errorf("Status = %q, want pending", rep.Status)
	}
	if got := events.last(); got.event != realtime.EventInsert || got.id != rep.ID {
		t.Errorf("published %+v, want insert of %d", got, rep.ID)
	}

	sub, _ := store.get("https://push.example/a")
	if !sub.ReportedFor(march2025) {
		t.Error("subscription should be marked as reported for Marzo 2025")
	}
	if sub.SubscriberName != "Lucía Fernández" {
		t.Errorf("SubscriberName = %q", sub.SubscriberName)
	}
	if push.ShouldShowReminder(ctx, session, march2025) {
		t.Error("reminder should be hidden after submitting")
	}

	stored, err := svc.Get(ctx, rep.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.SuperintendentName != "Alberto G." || stored.GroupNumber != 1 {
		t.Errorf("superintendent = %q group %d", stored.SuperintendentName, stored.GroupNumber)
	}
}

func TestSubmitReportKeepsPioneerHours(t *testing.T) {
	db := setupTestDB(t)
	supID := seedSuperintendent(t, db, "David N.", 2)
	svc := newTestReportService(db, nil, nil)

	rep, err := svc.Submit(context.Background(), PushSession{}, ReportInput{
		FullName:         "Tomás Herrera",
		Role:             "precursor_regular",
		Participated:     boolPtr(true),
		SuperintendentID: int64Ptr(supID),
		Hours:            intPtr(50),
		BibleCourses:     intPtr(3),
		Month:            "Enero",
		Year:             2025,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if rep.Hours == nil || *rep.Hours != 50 || rep.BibleCourses == nil || *rep.BibleCourses != 3 {
		t.Errorf("pioneer hours/courses not kept: %v %v", rep.Hours, rep.BibleCourses)
	}
	if rep.Month != "Enero" {
		t.Errorf("Month = %q, want explicit Enero", rep.Month)
	}
}

func TestSubmitReportValidation(t *testing.T) {
	db := setupTestDB(t)
	supID := seedSuperintendent(t, db, "Alberto G.", 1)
	svc := newTestReportService(db, nil, nil)

	valid := func() ReportInput {
		return ReportInput{
			FullName:         "Lucía Fernández",
			Role:             "publicador",
			Participated:     boolPtr(false),
			SuperintendentID: int64Ptr(supID),
		}
	}

	tests := []struct {
		name  string
		edit  func(in *ReportInput)
		field string
	}{
		{"empty name", func(in *ReportInput) { in.FullName = " " }, "full_name"},
		{"unknown role", func(in *ReportInput) { in.Role = "anciano" }, "role"},
		{"missing participated", func(in *ReportInput) { in.Participated = nil }, "participated"},
		{"missing superintendent", func(in *ReportInput) { in.SuperintendentID = nil }, "superintendent_id"},
		{"unknown superintendent", func(in *ReportInput) { in.SuperintendentID = int64Ptr(9999) }, "superintendent_id"},
		{"bad month", func(in *ReportInput) { in.Month = "Smarch"; in.Year = 2025 }, "month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.edit(&in)
			_, err := svc.Submit(context.Background(), PushSession{}, in)
			var verr validation.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestReportAdminLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	sup1 := seedSuperintendent(t, db, "Alberto G.", 1)
	sup2 := seedSuperintendent(t, db, "David N.", 2)
	events := &fakePublisher{}
	svc := newTestReportService(db, nil, events)

	rep, err := svc.Submit(ctx, PushSession{}, ReportInput{
		FullName: "Lucia Fernandez", Role: "publicador",
		Participated: boolPtr(true), SuperintendentID: int64Ptr(sup1),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	updated, err := svc.Update(ctx, rep.ID, ReportInput{
		FullName: "Lucía Fernández", Role: "publicador",
		Participated: boolPtr(true), SuperintendentID: int64Ptr(sup2),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Month != rep.Month || updated.Year != rep.Year {
		t.Errorf("Update() moved the report to %s %d", updated.Month, updated.Year)
	}
	if got := events.last(); got.event != realtime.EventUpdate {
		t.Errorf("published %+v, want update", got)
	}

	stored, _ := svc.Get(ctx, rep.ID)
	if stored.Status != models.StatusEdited || stored.GroupNumber != 2 {
		t.Errorf("stored status %q group %d, want edited group 2", stored.Status, stored.GroupNumber)
	}

	if err := svc.MarkReviewed(ctx, rep.ID); err != nil {
		t.Fatalf("MarkReviewed() error = %v", err)
	}
	stored, _ = svc.Get(ctx, rep.ID)
	if stored.Status != models.StatusReviewed {
		t.Errorf("Status = %q, want reviewed", stored.Status)
	}

	if err := svc.Delete(ctx, rep.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := events.last(); got.event != realtime.EventDelete || got.id != rep.ID {
		t.Errorf("published %+v, want delete", got)
	}
	if _, err := svc.Get(ctx, rep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, rep.ID, ReportInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() of missing report error = %v, want ErrNotFound", err)
	}
}

func TestClearAllReports(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	supID := seedSuperintendent(t, db, "Alberto G.", 1)
	svc := newTestReportService(db, nil, nil)

	for _, name := range []string{"Ana", "Beto", "Carla"} {
		if _, err := svc.Submit(ctx, PushSession{}, ReportInput{
			FullName: name, Role: "publicador",
			Participated: boolPtr(true), SuperintendentID: int64Ptr(supID),
		}); err != nil {
			t.Fatalf("Submit(%s) error = %v", name, err)
		}
	}

	n, err := svc.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ClearAll() = %d, want 3", n)
	}
	left, _ := svc.List(ctx, models.ReportFilter{})
	if len(left) != 0 {
		t.Errorf("List() after clear = %d reports", len(left))
	}
}

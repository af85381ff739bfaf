package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reporthub/internal/database"
	"reporthub/internal/models"
	"reporthub/internal/repository"
	"reporthub/internal/roster"
	"reporthub/internal/validation"
)

func newTestRosterService(db *database.DB) *RosterService {
	base := &roster.BaseData{
		Superintendents: []roster.SuperintendentSeed{
			{Name: "Alberto G.", Group: 1},
			{Name: "David N.", Group: 2},
		},
		Members: []models.RosterMember{
			{FullName: "Ana Ruiz", GroupNumber: 1},
			{FullName: "Beto Díaz", GroupNumber: 2},
		},
	}
	return NewRosterService(base,
		repository.NewReportRepository(db),
		repository.NewRosterRepository(db),
		repository.NewOverrideRepository(db),
		repository.NewSuperintendentRepository(db),
	)
}

func createReport(t *testing.T, db *database.DB, name string, supID int64, submitted time.Time) *models.ServiceReport {
	t.Helper()
	rep := &models.ServiceReport{
		FullName:         name,
		Role:             models.RolePublicador,
		Participated:     true,
		SuperintendentID: &supID,
		Month:            march2025.Month,
		Year:             march2025.Year,
		SubmittedAt:      submitted,
	}
	if err := repository.NewReportRepository(db).Create(context.Background(), rep); err != nil {
		t.Fatalf("Create(%s) error = %v", name, err)
	}
	return rep
}

func TestRosterReconcile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := newTestRosterService(db)

	if err := svc.SeedSuperintendents(ctx); err != nil {
		t.Fatalf("SeedSuperintendents() error = %v", err)
	}
	sups, _ := repository.NewSuperintendentRepository(db).List(ctx)
	if len(sups) != 2 {
		t.Fatalf("seeded %d superintendents, want 2", len(sups))
	}
	group1 := sups[0].ID

	base := time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)
	createReport(t, db, "ana ruiz", group1, base)
	misspelled := createReport(t, db, "Betto Diaz", group1, base.Add(time.Hour))

	rep, err := svc.Reconcile(ctx, march2025)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rep.SubmittedKnownCount != 1 || rep.MissingCount != 1 || rep.ProgressPercent != 50 {
		t.Errorf("before mapping: known=%d missing=%d progress=%d", rep.SubmittedKnownCount, rep.MissingCount, rep.ProgressPercent)
	}
	if len(rep.UnresolvedUnknownSubmitters) != 1 || rep.UnresolvedUnknownSubmitters[0].Report.ID != misspelled.ID {
		t.Fatalf("UnresolvedUnknownSubmitters = %+v", rep.UnresolvedUnknownSubmitters)
	}

	if err := svc.SetMapping(ctx, "Betto Diaz", "Beto  Díaz"); err != nil {
		t.Fatalf("SetMapping() error = %v", err)
	}
	rep, err = svc.Reconcile(ctx, march2025)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rep.SubmittedKnownCount != 2 || rep.ProgressPercent != 100 {
		t.Errorf("after mapping: known=%d progress=%d", rep.SubmittedKnownCount, rep.ProgressPercent)
	}
	if len(rep.UnresolvedUnknownSubmitters) != 0 {
		t.Errorf("UnresolvedUnknownSubmitters = %+v, want none", rep.UnresolvedUnknownSubmitters)
	}
	if len(rep.WrongGroupMembers) != 1 || rep.WrongGroupMembers[0].SubmittedGroup != 1 {
		t.Errorf("WrongGroupMembers = %+v, want Beto in group 1", rep.WrongGroupMembers)
	}

	if err := svc.AddToRoster(ctx, " Carla   Soto ", 1); err != nil {
		t.Fatalf("AddToRoster() error = %v", err)
	}
	rep, _ = svc.Reconcile(ctx, march2025)
	if rep.TotalExpected != 3 || len(rep.MissingMembers) != 1 || rep.MissingMembers[0].FullName != "Carla Soto" {
		t.Errorf("after add: total=%d missing=%+v", rep.TotalExpected, rep.MissingMembers)
	}

	members, _ := svc.CustomMembers(ctx)
	if len(members) != 1 {
		t.Fatalf("CustomMembers() = %d, want 1", len(members))
	}
	if err := svc.RemoveFromRoster(ctx, members[0].ID); err != nil {
		t.Fatalf("RemoveFromRoster() error = %v", err)
	}
	rep, _ = svc.Reconcile(ctx, march2025)
	if rep.TotalExpected != 2 {
		t.Errorf("after remove: total=%d, want 2", rep.TotalExpected)
	}
}

func TestRosterFlags(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := newTestRosterService(db)
	if err := svc.SeedSuperintendents(ctx); err != nil {
		t.Fatalf("SeedSuperintendents() error = %v", err)
	}
	sups, _ := repository.NewSuperintendentRepository(db).List(ctx)

	stranger := createReport(t, db, "Visitante", sups[0].ID, time.Now())

	if _, err := svc.SetFlag(ctx, 9999, FlagInput{IsDuplicate: true}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetFlag(missing) error = %v, want ErrNotFound", err)
	}

	flag, err := svc.SetFlag(ctx, stranger.ID, FlagInput{IsDuplicate: true, Note: " test "})
	if err != nil {
		t.Fatalf("SetFlag() error = %v", err)
	}
	if flag.Note != "test" {
		t.Errorf("Note = %q, want trimmed", flag.Note)
	}

	rep, _ := svc.Reconcile(ctx, march2025)
	if rep.FlaggedDuplicates != 1 || len(rep.UnresolvedUnknownSubmitters) != 0 {
		t.Errorf("flagged=%d unresolved=%d, want 1 and 0", rep.FlaggedDuplicates, len(rep.UnresolvedUnknownSubmitters))
	}

	if err := svc.DeleteFlag(ctx, stranger.ID); err != nil {
		t.Fatalf("DeleteFlag() error = %v", err)
	}
	rep, _ = svc.Reconcile(ctx, march2025)
	if len(rep.UnresolvedUnknownSubmitters) != 1 {
		t.Errorf("unresolved=%d after removing flag, want 1", len(rep.UnresolvedUnknownSubmitters))
	}
}

func TestRosterValidation(t *testing.T) {
	svc := newTestRosterService(nil)
	ctx := context.Background()

	var verr validation.ValidationError
	if err := svc.AddToRoster(ctx, "  ", 1); !errors.As(err, &verr) {
		t.Errorf("AddToRoster(empty) error = %v", err)
	}
	if err := svc.AddToRoster(ctx, "Carla", 0); !errors.As(err, &verr) {
		t.Errorf("AddToRoster(group 0) error = %v", err)
	}
	if err := svc.SetMapping(ctx, "", "Ana Ruiz"); !errors.As(err, &verr) {
		t.Errorf("SetMapping(empty alias) error = %v", err)
	}
	if err := svc.SetMapping(ctx, "ana", " "); !errors.As(err, &verr) {
		t.Errorf("SetMapping(empty canonical) error = %v", err)
	}
}

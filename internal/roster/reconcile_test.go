package roster

import (
	"testing"

	"reporthub/internal/models"
)

var scenarioRoster = []models.RosterMember{
	{FullName: "Juan Perez", GroupNumber: 1},
	{FullName: "Ana Lopez", GroupNumber: 2},
}

func TestReconcileAllPresent(t *testing.T) {
	reports := []models.ServiceReport{
		report(1, "Juan Perez", 1, 1),
		report(2, "Ana Lopez", 2, 2),
	}

	got := Run(Input{Period: march2025, Base: scenarioRoster, Reports: reports})

	if got.MissingCount != 0 {
		t.Errorf("MissingCount = %d, want 0", got.MissingCount)
	}
	if got.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %d, want 100", got.ProgressPercent)
	}
	if len(got.MissingMembers) != 0 || len(got.WrongGroupMembers) != 0 || len(got.UnresolvedUnknownSubmitters) != 0 {
		t.Errorf("unexpected lists: %+v", got)
	}
}

func TestReconcileEmptyRoster(t *testing.T) {
	got := Run(Input{Period: march2025, Reports: []models.ServiceReport{report(1, "Juan Perez", 1, 1)}})

	if got.TotalExpected != 0 {
		t.Errorf("TotalExpected = %d, want 0", got.TotalExpected)
	}
	if got.ProgressPercent != 0 {
		t.Errorf("ProgressPercent = %d, want 0", got.ProgressPercent)
	}
	if got.MissingCount != 0 {
		t.Errorf("MissingCount = %d, want 0", got.MissingCount)
	}
	if len(got.UnresolvedUnknownSubmitters) != 1 {
		t.Errorf("expected the report to be unresolved, got %d", len(got.UnresolvedUnknownSubmitters))
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		known, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{5, 3, 100},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := progressPercent(tt.known, tt.total); got != tt.want {
			t.Errorf("progressPercent(%d, %d) = %d, want %d", tt.known, tt.total, got, tt.want)
		}
	}
}

func TestScenarioResubmission(t *testing.T) {
	reports := []models.ServiceReport{
		report(1, "Juan Pérez", 1, 10),
		report(2, "juan perez", 1, 20),
	}

	got := Run(Input{Period: march2025, Base: scenarioRoster, Reports: reports})

	if got.SubmittedKnownCount != 1 {
		t.Errorf("SubmittedKnownCount = %d, want 1", got.SubmittedKnownCount)
	}
	if len(got.MissingMembers) != 1 || got.MissingMembers[0] != (models.RosterMember{FullName: "Ana Lopez", GroupNumber: 2}) {
		t.Errorf("MissingMembers = %+v, want [Ana Lopez 2]", got.MissingMembers)
	}
	for _, m := range got.Members {
		if m.Member.FullName == "Juan Perez" && (m.Report == nil || m.Report.ID != 2) {
			t.Errorf("Juan should be matched to report 2, got %+v", m.Report)
		}
	}
	if got.MissingCount != 1 || got.ProgressPercent != 50 {
		t.Errorf("MissingCount = %d ProgressPercent = %d, want 1 and 50", got.MissingCount, got.ProgressPercent)
	}
}

func TestScenarioAliasWrongGroup(t *testing.T) {
	reports := []models.ServiceReport{report(1, "J. Perez", 3, 5)}
	mappings := []models.NameMapping{{AliasNormalized: "j perez", CanonicalFullName: "Juan Perez"}}

	got := Run(Input{Period: march2025, Base: scenarioRoster, Reports: reports, Mappings: mappings})

	if len(got.WrongGroupMembers) != 1 {
		t.Fatalf("WrongGroupMembers = %+v, want one entry", got.WrongGroupMembers)
	}
	wg := got.WrongGroupMembers[0]
	if wg.Member.FullName != "Juan Perez" || wg.Member.GroupNumber != 1 || wg.SubmittedGroup != 3 {
		t.Errorf("WrongGroupMembers[0] = %+v", wg)
	}
	if len(got.UnresolvedUnknownSubmitters) != 0 {
		t.Errorf("mapped alias should not be unresolved: %+v", got.UnresolvedUnknownSubmitters)
	}
}

func TestScenarioAddToRoster(t *testing.T) {
	reports := []models.ServiceReport{
		report(1, "Juan Perez", 1, 1),
		report(2, "Carlos Nuevo", 4, 2),
	}

	before := Run(Input{Period: march2025, Base: scenarioRoster, Reports: reports})
	if len(before.UnresolvedUnknownSubmitters) != 1 || before.UnresolvedUnknownSubmitters[0].NameKey != "carlos nuevo" {
		t.Fatalf("UnresolvedUnknownSubmitters = %+v, want carlos nuevo", before.UnresolvedUnknownSubmitters)
	}

	custom := []models.CustomMember{{FullName: "Carlos Nuevo", GroupNumber: 4, IsActive: true}}
	after := Run(Input{Period: march2025, Base: scenarioRoster, Custom: custom, Reports: reports})

	if len(after.UnresolvedUnknownSubmitters) != 0 {
		t.Errorf("Carlos should no longer be unresolved: %+v", after.UnresolvedUnknownSubmitters)
	}
	for _, m := range after.MissingMembers {
		if m.FullName == "Carlos Nuevo" {
			t.Error("Carlos should not be missing")
		}
	}
	found := false
	for _, m := range after.Members {
		if m.Member.FullName == "Carlos Nuevo" {
			found = true
			if !m.Submitted || m.WrongGroup {
				t.Errorf("Carlos status = %+v", m)
			}
		}
	}
	if !found {
		t.Error("Carlos missing from member rows")
	}
	if after.TotalExpected != 3 || after.SubmittedKnownCount != 2 {
		t.Errorf("TotalExpected = %d SubmittedKnownCount = %d, want 3 and 2", after.TotalExpected, after.SubmittedKnownCount)
	}
}

func TestUnresolvedSkipsFlaggedDuplicates(t *testing.T) {
	reports := []models.ServiceReport{
		report(1, "Juan Perez", 1, 1),
		report(2, "Juan Perez Test", 1, 2),
		report(3, "Someone Else", 1, 3),
	}
	flags := []models.ReportFlag{{ReportID: 2, IsDuplicate: true}}

	got := Run(Input{Period: march2025, Base: scenarioRoster, Reports: reports, Flags: flags})

	if len(got.UnresolvedUnknownSubmitters) != 1 || got.UnresolvedUnknownSubmitters[0].Report.ID != 3 {
		t.Errorf("UnresolvedUnknownSubmitters = %+v, want only report 3", got.UnresolvedUnknownSubmitters)
	}
	if got.FlaggedDuplicates != 1 {
		t.Errorf("FlaggedDuplicates = %d, want 1", got.FlaggedDuplicates)
	}
}

func TestUnresolvedUsesFlagCanonicalName(t *testing.T) {
	reports := []models.ServiceReport{report(1, "La hermana Ana", 2, 1)}
	flags := []models.ReportFlag{{ReportID: 1, CanonicalFullName: strPtr("Ana López")}}

	got := Run(Input{Period: march2025, Base: scenarioRoster, Reports: reports, Flags: flags})

	if len(got.UnresolvedUnknownSubmitters) != 0 {
		t.Errorf("flag should resolve the report: %+v", got.UnresolvedUnknownSubmitters)
	}
	if got.SubmittedKnownCount != 1 {
		t.Errorf("SubmittedKnownCount = %d, want 1", got.SubmittedKnownCount)
	}
}

func TestMissingCountNeverNegative(t *testing.T) {
	// Two base entries share a key, so the headcount exceeds the distinct members
	base := []models.RosterMember{
		{FullName: "Juan Perez", GroupNumber: 1},
		{FullName: "Juan Pérez", GroupNumber: 1},
	}
	reports := []models.ServiceReport{report(1, "Juan Perez", 1, 1)}

	got := Run(Input{Period: march2025, Base: base, Reports: reports})
	if got.MissingCount < 0 {
		t.Fatalf("MissingCount = %d", got.MissingCount)
	}
	if got.TotalExpected != 2 || got.MissingCount != 1 {
		t.Errorf("TotalExpected = %d MissingCount = %d, want 2 and 1", got.TotalExpected, got.MissingCount)
	}
	if got.ProgressPercent != 50 {
		t.Errorf("ProgressPercent = %d, want 50", got.ProgressPercent)
	}
}

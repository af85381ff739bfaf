package roster

import (
	"testing"

	"reporthub/internal/models"
)

func strPtr(s string) *string { return &s }

func TestResolveEffective(t *testing.T) {
	tests := []struct {
		name     string
		reports  []models.ServiceReport
		flags    []models.ReportFlag
		mappings []models.NameMapping
		want     map[string]int64
	}{
		{
			name:    "raw key used without overrides",
			reports: []models.ServiceReport{report(1, "Juan Perez", 1, 1)},
			want:    map[string]int64{"juan perez": 1},
		},
		{
			name:     "mapping redirects alias",
			reports:  []models.ServiceReport{report(1, "J. Perez", 1, 1)},
			mappings: []models.NameMapping{{AliasNormalized: "j perez", CanonicalFullName: "Juan Pérez"}},
			want:     map[string]int64{"juan perez": 1},
		},
		{
			name:     "flag canonical name beats mapping",
			reports:  []models.ServiceReport{report(1, "J. Perez", 1, 1)},
			flags:    []models.ReportFlag{{ReportID: 1, CanonicalFullName: strPtr("Ana Lopez")}},
			mappings: []models.NameMapping{{AliasNormalized: "j perez", CanonicalFullName: "Juan Perez"}},
			want:     map[string]int64{"ana lopez": 1},
		},
		{
			name:     "blank flag canonical name falls through to mapping",
			reports:  []models.ServiceReport{report(1, "J. Perez", 1, 1)},
			flags:    []models.ReportFlag{{ReportID: 1, CanonicalFullName: strPtr("  ")}},
			mappings: []models.NameMapping{{AliasNormalized: "j perez", CanonicalFullName: "Juan Perez"}},
			want:     map[string]int64{"juan perez": 1},
		},
		{
			name: "duplicate flag drops the report",
			reports: []models.ServiceReport{
				report(1, "Juan Perez", 1, 1),
				report(2, "Juanito Perez", 1, 9),
			},
			flags:    []models.ReportFlag{{ReportID: 2, IsDuplicate: true}},
			mappings: []models.NameMapping{{AliasNormalized: "juanito perez", CanonicalFullName: "Juan Perez"}},
			want:     map[string]int64{"juan perez": 1},
		},
		{
			name: "aliases collide and the latest wins",
			reports: []models.ServiceReport{
				report(1, "Juan Perez", 1, 1),
				report(2, "J. Perez", 1, 9),
			},
			mappings: []models.NameMapping{{AliasNormalized: "j perez", CanonicalFullName: "Juan Perez"}},
			want:     map[string]int64{"juan perez": 2},
		},
		{
			name: "collision on equal timestamps favors higher id",
			reports: []models.ServiceReport{
				report(7, "J. Perez", 1, 3),
				report(4, "Juan Perez", 1, 3),
			},
			mappings: []models.NameMapping{{AliasNormalized: "j perez", CanonicalFullName: "Juan Perez"}},
			want:     map[string]int64{"juan perez": 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest := LatestBySubmitter(tt.reports, march2025)
			got := ResolveEffective(latest, NewOverrides(tt.flags, tt.mappings))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries (%v), want %d", len(got), got, len(tt.want))
			}
			for key, id := range tt.want {
				if got[key].ID != id {
					t.Errorf("entry %q has id %d, want %d", key, got[key].ID, id)
				}
			}
		})
	}
}

func TestResolveEffectiveNeverContainsDuplicates(t *testing.T) {
	reports := []models.ServiceReport{
		report(1, "Ana Lopez", 2, 1),
		report(2, "Ana  López", 2, 2),
		report(3, "Ana L.", 2, 3),
	}
	flags := []models.ReportFlag{{ReportID: 3, IsDuplicate: true}}
	mappings := []models.NameMapping{{AliasNormalized: "ana l", CanonicalFullName: "Ana Lopez"}}

	latest := LatestBySubmitter(reports, march2025)
	effective := ResolveEffective(latest, NewOverrides(flags, mappings))
	for _, rep := range effective {
		if rep.ID == 3 {
			t.Fatal("flagged duplicate present in effective map")
		}
	}
	if effective["ana lopez"].ID != 2 {
		t.Errorf("ana lopez resolved to %d, want 2", effective["ana lopez"].ID)
	}
}

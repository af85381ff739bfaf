package roster

import (
	"sort"

	"reporthub/internal/models"
)

// LatestBySubmitter keeps, for each normalized submitter name, the most
// recent report of the period. Resubmitting is a normal correction, so equal
// timestamps resolve to the report seen last.
func LatestBySubmitter(reports []models.ServiceReport, period models.Period) map[string]models.ServiceReport {
	latest := make(map[string]models.ServiceReport)
	for _, rep := range reports {
		if !period.Matches(rep.Month, rep.Year) {
			continue
		}
		key := Normalize(rep.FullName)
		if key == "" {
			continue
		}
		keepLatest(latest, key, rep)
	}
	return latest
}

func keepLatest(m map[string]models.ServiceReport, key string, rep models.ServiceReport) {
	if existing, ok := m[key]; ok && rep.SubmittedAt.Before(existing.SubmittedAt) {
		return
	}
	m[key] = rep
}

// orderedKeys returns the keys of m ordered by submission time and then id,
// which gives map walks a deterministic "later wins" order.
func orderedKeys(m map[string]models.ServiceReport) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := m[keys[i]], m[keys[j]]
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return keys[i] < keys[j]
	})
	return keys
}

package roster

import "reporthub/internal/models"

// Overrides holds the administrator decisions applied on read
type Overrides struct {
	// Flags by report id
	Flags map[int64]models.ReportFlag
	// Mappings from normalized alias to canonical full name
	Mappings map[string]string
}

// NewOverrides indexes flag and mapping rows
func NewOverrides(flags []models.ReportFlag, mappings []models.NameMapping) Overrides {
	o := Overrides{
		Flags:    make(map[int64]models.ReportFlag, len(flags)),
		Mappings: make(map[string]string, len(mappings)),
	}
	for _, f := range flags {
		o.Flags[f.ReportID] = f
	}
	for _, m := range mappings {
		if key := Normalize(m.AliasNormalized); key != "" {
			o.Mappings[key] = m.CanonicalFullName
		}
	}
	return o
}

// IsDuplicate reports whether the report was flagged as a duplicate
func (o Overrides) IsDuplicate(reportID int64) bool {
	f, ok := o.Flags[reportID]
	return ok && f.IsDuplicate
}

// CanonicalKey resolves the identity a report is attributed to: the flag's
// canonical name, then the alias mapping, then the raw key.
func (o Overrides) CanonicalKey(rawKey string, reportID int64) string {
	if f, ok := o.Flags[reportID]; ok && f.CanonicalFullName != nil {
		if key := Normalize(*f.CanonicalFullName); key != "" {
			return key
		}
	}
	if canonical, ok := o.Mappings[rawKey]; ok {
		if key := Normalize(canonical); key != "" {
			return key
		}
	}
	return rawKey
}

// ResolveEffective produces one report per canonical identity. Reports
// flagged as duplicates are dropped; collisions keep the latest report.
func ResolveEffective(latest map[string]models.ServiceReport, o Overrides) map[string]models.ServiceReport {
	effective := make(map[string]models.ServiceReport, len(latest))
	for _, rawKey := range orderedKeys(latest) {
		rep := latest[rawKey]
		if o.IsDuplicate(rep.ID) {
			continue
		}
		keepLatest(effective, o.CanonicalKey(rawKey, rep.ID), rep)
	}
	return effective
}

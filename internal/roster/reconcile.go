package roster

import (
	"math"
	"sort"

	"reporthub/internal/models"
)

// MemberStatus is one roster row of a reconciliation
type MemberStatus struct {
	Member     models.RosterMember   `json:"member"`
	Submitted  bool                  `json:"submitted"`
	WrongGroup bool                  `json:"wrong_group"`
	Report     *models.ServiceReport `json:"report,omitempty"`
}

// WrongGroupMember is a member who reported under another group's superintendent
type WrongGroupMember struct {
	Member         models.RosterMember `json:"member"`
	SubmittedGroup int                 `json:"submitted_group"`
	ReportID       int64               `json:"report_id"`
}

// UnresolvedSubmitter is a report that no roster member, mapping or flag accounts for
type UnresolvedSubmitter struct {
	NameKey     string               `json:"name_key"`
	ResolvedKey string               `json:"resolved_key"`
	Report      models.ServiceReport `json:"report"`
}

// Report is the reconciliation of one period's reports against the roster
type Report struct {
	Period                      models.Period         `json:"period"`
	TotalExpected               int                   `json:"total_expected"`
	SubmittedKnownCount         int                   `json:"submitted_known_count"`
	MissingCount                int                   `json:"missing_count"`
	ProgressPercent             int                   `json:"progress_percent"`
	FlaggedDuplicates           int                   `json:"flagged_duplicates"`
	Members                     []MemberStatus        `json:"members"`
	MissingMembers              []models.RosterMember `json:"missing_members"`
	WrongGroupMembers           []WrongGroupMember    `json:"wrong_group_members"`
	UnresolvedUnknownSubmitters []UnresolvedSubmitter `json:"unresolved_unknown_submitters"`
}

// Reconcile cross-references the effective reports against the roster.
// Members are walked in (group, name) order, so every list in the result is
// sorted the same way.
func Reconcile(r *Roster, effective map[string]models.ServiceReport) Report {
	out := Report{
		TotalExpected:     r.TotalExpected(),
		Members:           make([]MemberStatus, 0, r.Len()),
		MissingMembers:    []models.RosterMember{},
		WrongGroupMembers: []WrongGroupMember{},
	}

	for _, m := range r.Sorted() {
		rep, ok := effective[Normalize(m.FullName)]
		if !ok {
			out.Members = append(out.Members, MemberStatus{Member: m})
			out.MissingMembers = append(out.MissingMembers, m)
			continue
		}

		out.SubmittedKnownCount++
		status := MemberStatus{Member: m, Submitted: true, Report: &rep}
		if rep.GroupNumber != m.GroupNumber {
			status.WrongGroup = true
			out.WrongGroupMembers = append(out.WrongGroupMembers, WrongGroupMember{
				Member:         m,
				SubmittedGroup: rep.GroupNumber,
				ReportID:       rep.ID,
			})
		}
		out.Members = append(out.Members, status)
	}

	out.MissingCount = max(out.TotalExpected-out.SubmittedKnownCount, 0)
	out.ProgressPercent = progressPercent(out.SubmittedKnownCount, out.TotalExpected)
	return out
}

func progressPercent(known, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(min(known, total)) / float64(total) * 100))
}

// UnresolvedSubmitters lists the latest reports, before duplicate filtering,
// whose resolved identity is not on the roster and which are not flagged as
// duplicates. These are the reports still waiting for an administrator.
func UnresolvedSubmitters(r *Roster, latest map[string]models.ServiceReport, o Overrides) []UnresolvedSubmitter {
	out := []UnresolvedSubmitter{}
	for rawKey, rep := range latest {
		if o.IsDuplicate(rep.ID) {
			continue
		}
		resolved := o.CanonicalKey(rawKey, rep.ID)
		if r.Contains(resolved) {
			continue
		}
		out = append(out, UnresolvedSubmitter{NameKey: rawKey, ResolvedKey: resolved, Report: rep})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NameKey != out[j].NameKey {
			return out[i].NameKey < out[j].NameKey
		}
		return out[i].Report.ID < out[j].Report.ID
	})
	return out
}

// Input is everything a reconciliation run reads
type Input struct {
	Period   models.Period
	Base     []models.RosterMember
	Custom   []models.CustomMember
	Reports  []models.ServiceReport
	Flags    []models.ReportFlag
	Mappings []models.NameMapping
}

// Run executes the whole pipeline: roster merge, per-submitter
// deduplication, override resolution and reconciliation.
func Run(in Input) Report {
	r := BuildRoster(in.Base, in.Custom)
	o := NewOverrides(in.Flags, in.Mappings)

	latest := LatestBySubmitter(in.Reports, in.Period)
	effective := ResolveEffective(latest, o)

	rep := Reconcile(r, effective)
	rep.Period = in.Period
	rep.UnresolvedUnknownSubmitters = UnresolvedSubmitters(r, latest, o)
	for _, l := range latest {
		if o.IsDuplicate(l.ID) {
			rep.FlaggedDuplicates++
		}
	}
	return rep
}

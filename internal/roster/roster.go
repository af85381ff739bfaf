package roster

import (
	"sort"

	"reporthub/internal/models"
)

// Roster is the merged set of expected reporters, unique by normalized name
type Roster struct {
	members       []models.RosterMember
	index         map[string]int
	totalExpected int
}

// BuildRoster merges the base roster with the active custom members.
// A custom member whose key matches an existing entry replaces it in place,
// so the administrator's group wins. Members keep insertion order: base
// first, then new custom entries.
func BuildRoster(base []models.RosterMember, custom []models.CustomMember) *Roster {
	r := &Roster{index: make(map[string]int, len(base)+len(custom))}

	for _, m := range base {
		r.put(m)
	}
	baseKeys := make(map[string]struct{}, len(r.index))
	for key := range r.index {
		baseKeys[key] = struct{}{}
	}

	added := make(map[string]struct{})
	for _, c := range custom {
		if !c.IsActive {
			continue
		}
		key := r.put(models.RosterMember{FullName: c.FullName, GroupNumber: c.GroupNumber})
		if key == "" {
			continue
		}
		if _, inBase := baseKeys[key]; !inBase {
			added[key] = struct{}{}
		}
	}

	r.totalExpected = len(base) + len(added)
	return r
}

func (r *Roster) put(m models.RosterMember) string {
	key := Normalize(m.FullName)
	if key == "" {
		return ""
	}
	if i, ok := r.index[key]; ok {
		r.members[i] = m
		return key
	}
	r.index[key] = len(r.members)
	r.members = append(r.members, m)
	return key
}

// TotalExpected is the base headcount plus custom additions not already in
// the base roster. Custom overrides of base members are not counted twice.
func (r *Roster) TotalExpected() int {
	return r.totalExpected
}

// Len returns the number of distinct members
func (r *Roster) Len() int {
	return len(r.members)
}

// Members returns the members in insertion order
func (r *Roster) Members() []models.RosterMember {
	out := make([]models.RosterMember, len(r.members))
	copy(out, r.members)
	return out
}

// Sorted returns the members ordered by group and then name
func (r *Roster) Sorted() []models.RosterMember {
	out := r.Members()
	sortMembers(out)
	return out
}

// Lookup finds a member by normalized key
func (r *Roster) Lookup(key string) (models.RosterMember, bool) {
	i, ok := r.index[key]
	if !ok {
		return models.RosterMember{}, false
	}
	return r.members[i], true
}

// Contains reports whether key identifies a roster member
func (r *Roster) Contains(key string) bool {
	_, ok := r.index[key]
	return ok
}

func sortMembers(members []models.RosterMember) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].GroupNumber != members[j].GroupNumber {
			return members[i].GroupNumber < members[j].GroupNumber
		}
		return Normalize(members[i].FullName) < Normalize(members[j].FullName)
	})
}

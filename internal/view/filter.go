package view

import (
	"sort"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// FilterType is a selectable row type. It extends the match types with two
// synthetic ones.
type FilterType string

const (
	FilterManual   FilterType = "MANUAL"
	FilterMultiple FilterType = "MULTIPLE"
)

// FilterTypes lists every filter type in display order.
func FilterTypes() []FilterType {
	types := make([]FilterType, 0, len(models.MatchTypes)+2)
	for _, t := range models.MatchTypes {
		types = append(types, FilterType(t))
	}
	return append(types, FilterManual, FilterMultiple)
}

// IsValid reports whether f is a known filter type.
func (f FilterType) IsValid() bool {
	return f == FilterManual || f == FilterMultiple || models.MatchType(f).IsValid()
}

// AvailableFilterTypes derives the filter types present in the unfiltered
// groups: every match type of a single group, MULTIPLE when a group is
// multiple and MANUAL when a single match is manual.
func AvailableFilterTypes(groups []Group) []FilterType {
	present := make(map[FilterType]bool)
	for _, g := range groups {
		if g.IsOriginallyMultiple {
			present[FilterMultiple] = true
			continue
		}
		if len(g.Matches) == 0 {
			continue
		}
		m := g.Matches[0]
		present[FilterType(m.MatchType)] = true
		if m.IsManualMatch {
			present[FilterManual] = true
		}
	}

	var out []FilterType
	for _, t := range FilterTypes() {
		if present[t] {
			out = append(out, t)
			delete(present, t)
		}
	}
	// Unknown match types sent by the API go last.
	var unknown []FilterType
	for t := range present {
		unknown = append(unknown, t)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(out, unknown...)
}

// FilterByType keeps the groups whose type is selected.
//
// An empty selection and a selection as large as available both mean "all
// types" and return groups unchanged. Multiple groups are kept only when
// MULTIPLE is selected. Singles are kept by MANUAL when manual, by their
// match type otherwise.
func FilterByType(groups []Group, selected []FilterType, available []FilterType) []Group {
	set := make(map[FilterType]bool, len(selected))
	for _, f := range selected {
		set[f] = true
	}
	if len(set) == 0 || len(set) == len(available) {
		return groups
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if groupSelected(g, set) {
			out = append(out, g)
		}
	}
	return out
}

func groupSelected(g Group, set map[FilterType]bool) bool {
	if g.IsOriginallyMultiple {
		return set[FilterMultiple]
	}
	if len(g.Matches) == 0 {
		return false
	}
	m := g.Matches[0]
	if m.IsManualMatch {
		return set[FilterManual]
	}
	return set[FilterType(m.MatchType)]
}

// FilterTypeCounts counts, for each available type, the unfiltered groups
// that selecting it alone would keep.
func FilterTypeCounts(groups []Group) map[FilterType]int {
	counts := make(map[FilterType]int)
	for _, t := range AvailableFilterTypes(groups) {
		only := map[FilterType]bool{t: true}
		for _, g := range groups {
			if groupSelected(g, only) {
				counts[t]++
			}
		}
	}
	return counts
}

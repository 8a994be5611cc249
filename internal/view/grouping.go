package view

import "github.com/forestar-be/forestar-facturation/pkg/models"

// Group is every match of one invoice.
//
// IsOriginallyMultiple is computed from the unfiltered match list and is
// carried unchanged through search and filtering.
type Group struct {
	InvoiceID            string
	Invoice              *models.Invoice // nil when the id is unknown
	Matches              []models.Match
	IsOriginallyMultiple bool
}

// GroupMatches partitions matches by invoice id. Groups come out in order of
// first appearance and matches keep their relative order. Invoices without
// matches produce no group.
func GroupMatches(matches []models.Match, lookup *Lookup) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, m := range matches {
		i, ok := index[m.InvoiceID]
		if !ok {
			i = len(groups)
			index[m.InvoiceID] = i
			groups = append(groups, Group{
				InvoiceID: m.InvoiceID,
				Invoice:   lookup.Invoice(m.InvoiceID),
			})
		}
		groups[i].Matches = append(groups[i].Matches, m)
	}
	for i := range groups {
		groups[i].IsOriginallyMultiple = len(groups[i].Matches) > 1
	}
	return groups
}

// MultipleGroups returns the groups with conflicting matches.
func MultipleGroups(groups []Group) []Group {
	var out []Group
	for _, g := range groups {
		if g.IsOriginallyMultiple {
			out = append(out, g)
		}
	}
	return out
}

// FindGroup returns the group of the given invoice.
func FindGroup(groups []Group, invoiceID string) (Group, bool) {
	for _, g := range groups {
		if g.InvoiceID == invoiceID {
			return g, true
		}
	}
	return Group{}, false
}

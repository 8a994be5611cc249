package view

import (
	"strings"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// Words that find conflict groups by name.
var multipleSearchWords = []string{"multiple", "correspondances multiples"}

// Search keeps the groups matching term, case-insensitively.
//
// An invoice ref or customer hit keeps the whole group. Otherwise a group
// keeps the matches whose transaction labels, details or match type contain
// the term. A multiple group that survives always gets its full original
// match list back, and typing part of "multiple" retains every multiple
// group. An empty term returns groups unchanged.
func Search(groups []Group, lookup *Lookup, term string) []Group {
	if term == "" {
		return groups
	}
	needle := strings.ToLower(term)
	generic := isMultipleSearch(needle)

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if invoiceContains(g.Invoice, needle) {
			out = append(out, g)
			continue
		}

		var hits []models.Match
		for _, m := range g.Matches {
			if matchContains(m, lookup.TransactionOf(m), needle) {
				hits = append(hits, m)
			}
		}

		switch {
		case g.IsOriginallyMultiple && (len(hits) > 0 || generic):
			out = append(out, g)
		case !g.IsOriginallyMultiple && len(hits) > 0:
			g.Matches = hits
			out = append(out, g)
		}
	}
	return out
}

func isMultipleSearch(needle string) bool {
	for _, word := range multipleSearchWords {
		if strings.Contains(word, needle) {
			return true
		}
	}
	return false
}

func invoiceContains(inv *models.Invoice, needle string) bool {
	if inv == nil {
		return false
	}
	return strings.Contains(strings.ToLower(inv.Ref), needle) ||
		strings.Contains(strings.ToLower(inv.Tiers), needle)
}

func matchContains(m models.Match, tx *models.BankTransaction, needle string) bool {
	if tx != nil {
		if strings.Contains(strings.ToLower(tx.Libelles), needle) ||
			strings.Contains(strings.ToLower(tx.DetailsMouvement), needle) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(string(m.MatchType)), needle)
}

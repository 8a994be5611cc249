package view

import (
	"testing"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

func TestGroupMatches(t *testing.T) {
	groups, _ := fixtureGroups()

	if got, want := groupIDs(groups), []string{"A", "B", "C"}; !equalStrings(got, want) {
		t.Fatalf("group order = %v, want %v", got, want)
	}
	if !groups[0].IsOriginallyMultiple || len(groups[0].Matches) != 2 {
		t.Errorf("group A = %+v, want two matches flagged multiple", groups[0])
	}
	if groups[1].IsOriginallyMultiple || groups[2].IsOriginallyMultiple {
		t.Errorf("groups B and C must be single")
	}
	if groups[0].Invoice == nil || groups[0].Invoice.Ref != "FAC-001" {
		t.Errorf("group A invoice = %+v, want FAC-001", groups[0].Invoice)
	}
}

func TestGroupMatchesUnknownInvoice(t *testing.T) {
	matches := []models.Match{{ID: "m1", InvoiceID: "ghost", MatchType: models.MatchTypeNone}}
	groups := GroupMatches(matches, NewLookup(nil, nil))

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Invoice != nil {
		t.Errorf("Invoice = %+v, want nil for an unknown id", groups[0].Invoice)
	}
}

func TestMultipleFlagSurvivesNarrowing(t *testing.T) {
	groups, lookup := fixtureGroups()
	available := AvailableFilterTypes(groups)

	terms := []string{"", "dupont", "inconnu", "multi", "95", "fuzzy", "nothing-matches"}
	filters := [][]FilterType{nil, {FilterMultiple}, {FilterType(models.MatchTypeExactRef)}, {FilterManual, FilterMultiple}}

	for _, term := range terms {
		for _, selected := range filters {
			narrowed := FilterByType(Search(groups, lookup, term), selected, available)
			for _, g := range narrowed {
				original, _ := FindGroup(groups, g.InvoiceID)
				if g.IsOriginallyMultiple != original.IsOriginallyMultiple {
					t.Errorf("term %q filters %v: group %s multiple = %v, want %v",
						term, selected, g.InvoiceID, g.IsOriginallyMultiple, original.IsOriginallyMultiple)
				}
			}
		}
	}
}

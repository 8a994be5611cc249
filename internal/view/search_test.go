package view

import "testing"

func TestSearch(t *testing.T) {
	groups, lookup := fixtureGroups()

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"A", "B", "C"}},
		{"DUPONT", []string{"A"}},
		{"fac-003", []string{"C"}},
		{"acompte", []string{"B"}},
		{"name", []string{"A", "B"}},
		{"multi", []string{"A"}},
		{"correspondances", []string{"A"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := groupIDs(Search(groups, lookup, tt.term))
			if !equalStrings(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestSearchRestoresFullMultipleGroup(t *testing.T) {
	groups, lookup := fixtureGroups()

	// Only m2's transaction mentions "inconnu".
	got := Search(groups, lookup, "inconnu")
	if len(got) != 1 || got[0].InvoiceID != "A" {
		t.Fatalf("Search(inconnu) = %v, want [A]", groupIDs(got))
	}
	if len(got[0].Matches) != 2 {
		t.Errorf("group A kept %d matches, want its full original 2", len(got[0].Matches))
	}
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	groups, lookup := fixtureGroups()
	_ = Search(groups, lookup, "acompte")

	if len(groups) != 3 || len(groups[0].Matches) != 2 {
		t.Errorf("input groups were modified: %+v", groups)
	}
}

package view

import (
	"testing"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

func TestProject(t *testing.T) {
	matches, invoices, transactions := fixture()
	state := NewState(2)

	p := Project(matches, invoices, transactions, state)
	if got := keys(p.Items); !equalStrings(got, []string{"A", "C", "B"}) {
		t.Errorf("Items = %v, want [A C B]", got)
	}
	if p.Page.TotalPages != 2 || len(p.Page.Items) != 2 {
		t.Errorf("Page = %+v, want 2 pages of up to 2", p.Page)
	}
	if p.TotalGroups != 3 {
		t.Errorf("TotalGroups = %d, want 3", p.TotalGroups)
	}
	if p.HasActiveFilters {
		t.Error("HasActiveFilters = true, want false")
	}
}

func TestProjectEmptyAndFullSelectionAgree(t *testing.T) {
	matches, invoices, transactions := fixture()

	empty := NewState(10)
	full := NewState(10)
	full.SetFilters(Project(matches, invoices, transactions, empty).AvailableFilters)

	a := keys(Project(matches, invoices, transactions, empty).Items)
	b := keys(Project(matches, invoices, transactions, full).Items)
	if !equalStrings(a, b) {
		t.Errorf("empty selection %v != full selection %v", a, b)
	}
}

func TestProjectSearchThenFilter(t *testing.T) {
	matches, invoices, transactions := fixture()
	state := NewState(10)
	state.SetSearchTerm("name")
	state.SetFilters([]FilterType{FilterMultiple})

	p := Project(matches, invoices, transactions, state)
	if got := keys(p.Items); !equalStrings(got, []string{"A"}) {
		t.Fatalf("Items = %v, want [A]", got)
	}
	multiple, ok := p.Items[0].(*MultipleItem)
	if !ok {
		t.Fatalf("Items[0] is %T, want *MultipleItem", p.Items[0])
	}
	if len(multiple.Matches) != 2 {
		t.Errorf("multiple row has %d matches, want 2", len(multiple.Matches))
	}
}

func TestProjectDetailsNil(t *testing.T) {
	p := ProjectDetails(nil, NewState(10))
	if len(p.Items) != 0 || p.TotalGroups != 0 {
		t.Errorf("ProjectDetails(nil) = %+v, want empty", p)
	}
}

func TestSingleItemSortValue(t *testing.T) {
	manual := &SingleItem{Resolved: Resolved{Match: models.Match{MatchType: models.MatchTypeExactRef, IsManualMatch: true}}}
	auto := &SingleItem{Resolved: Resolved{Match: models.Match{MatchType: models.MatchTypeExactRef}}}

	if manual.SortValue() != "MANUAL" || auto.SortValue() != "EXACT_REF" {
		t.Errorf("SortValue() = %q / %q, want MANUAL / EXACT_REF", manual.SortValue(), auto.SortValue())
	}
	if (&MultipleItem{}).SortValue() != "MULTIPLE" {
		t.Error("MultipleItem.SortValue() != MULTIPLE")
	}
}

package view

import "github.com/forestar-be/forestar-facturation/pkg/models"

// Projection is a reconciliation snapshot seen through a State.
type Projection struct {
	// Items is every filtered and sorted row, before pagination. Exports
	// consume this list.
	Items []DisplayItem `json:"-"`
	Page  Page          `json:"page"`

	AvailableFilters []FilterType       `json:"availableFilters"`
	FilterCounts     map[FilterType]int `json:"filterCounts"`
	TotalGroups      int                `json:"totalGroups"`
	HasActiveFilters bool               `json:"hasActiveFilters"`
}

// Project runs the whole pipeline: group, search, filter by type, sort and
// paginate.
func Project(matches []models.Match, invoices []models.Invoice, transactions []models.BankTransaction, state State) Projection {
	lookup := NewLookup(invoices, transactions)
	groups := GroupMatches(matches, lookup)
	available := AvailableFilterTypes(groups)

	filtered := Search(groups, lookup, state.SearchTerm)
	filtered = FilterByType(filtered, state.Filters, available)
	items := Sort(DisplayItems(filtered, lookup), state.Sort)

	return Projection{
		Items:            items,
		Page:             Paginate(items, state.CurrentPage, state.ItemsPerPage),
		AvailableFilters: available,
		FilterCounts:     FilterTypeCounts(groups),
		TotalGroups:      len(groups),
		HasActiveFilters: state.HasActiveFilters(),
	}
}

// ProjectDetails is Project over a full reconciliation snapshot.
func ProjectDetails(details *models.ReconciliationDetails, state State) Projection {
	if details == nil {
		return Project(nil, nil, nil, state)
	}
	return Project(details.Matches, details.Invoices, details.Transactions, state)
}

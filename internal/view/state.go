package view

// State is the user's view configuration. Changing the search, the filters
// or the sort sends the view back to page 1.
type State struct {
	SearchTerm   string       `json:"searchTerm"`
	Filters      []FilterType `json:"filters"`
	Sort         SortConfig   `json:"sort"`
	CurrentPage  int          `json:"currentPage"`
	ItemsPerPage int          `json:"itemsPerPage"`
}

// NewState returns the initial view: no search, no filter, default order,
// first page.
func NewState(itemsPerPage int) State {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	return State{
		Sort:         SortConfig{Field: SortDefault, Direction: Asc},
		CurrentPage:  1,
		ItemsPerPage: itemsPerPage,
	}
}

// SetSearchTerm replaces the search term.
func (s *State) SetSearchTerm(term string) {
	if s.SearchTerm != term {
		s.SearchTerm = term
		s.CurrentPage = 1
	}
}

// SetFilters replaces the selected filter types.
func (s *State) SetFilters(filters []FilterType) {
	s.Filters = append([]FilterType(nil), filters...)
	s.CurrentPage = 1
}

// ToggleFilter adds f to the selection, or removes it when present.
func (s *State) ToggleFilter(f FilterType) {
	kept := s.Filters[:0:0]
	removed := false
	for _, existing := range s.Filters {
		if existing == f {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		kept = append(kept, f)
	}
	s.Filters = kept
	s.CurrentPage = 1
}

// ClearFilters empties the search term and the filter selection.
func (s *State) ClearFilters() {
	s.SearchTerm = ""
	s.Filters = nil
	s.CurrentPage = 1
}

// SetSort replaces the sort order.
func (s *State) SetSort(cfg SortConfig) {
	if s.Sort != cfg {
		s.Sort = cfg
		s.CurrentPage = 1
	}
}

// ToggleSort applies a header click on field.
func (s *State) ToggleSort(field SortField) {
	s.SetSort(ToggleSort(s.Sort, field))
}

// SetPage moves to page n, 1-based.
func (s *State) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.CurrentPage = n
}

// HasActiveFilters reports whether a search term or a filter is set.
func (s *State) HasActiveFilters() bool {
	return s.SearchTerm != "" || len(s.Filters) > 0
}

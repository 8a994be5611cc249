package view

// DefaultItemsPerPage is the page size used when none is configured.
const DefaultItemsPerPage = 10

// Page is one slice of the ordered rows.
type Page struct {
	CurrentPage int           `json:"currentPage"`
	TotalItems  int           `json:"totalItems"`
	TotalPages  int           `json:"totalPages"`
	StartIndex  int           `json:"startIndex"`
	EndIndex    int           `json:"endIndex"`
	Items       []DisplayItem `json:"items"`
}

// Paginate slices items for the 1-based currentPage. Pages past the end are
// empty; a page below 1 is page 1.
func Paginate(items []DisplayItem, currentPage, itemsPerPage int) Page {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	if currentPage < 1 {
		currentPage = 1
	}
	total := len(items)
	start := min((currentPage-1)*itemsPerPage, total)
	end := min(start+itemsPerPage, total)

	return Page{
		CurrentPage: currentPage,
		TotalItems:  total,
		TotalPages:  (total + itemsPerPage - 1) / itemsPerPage,
		StartIndex:  start,
		EndIndex:    end,
		Items:       items[start:end],
	}
}

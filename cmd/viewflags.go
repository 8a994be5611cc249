package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/view"
)

// addViewFlags registers the search, filter and sort flags shared by the
// view and export commands.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Search invoice reference, client, transaction label or match type")
	cmd.Flags().StringSliceP("filter", "f", nil, "Only show these types (EXACT_REF, FUZZY_NAME, ..., MANUAL, MULTIPLE)")
	cmd.Flags().String("sort", "", "Sort column: type, confidence, validated, amount, date (default: unvalidated first, by confidence)")
	cmd.Flags().String("dir", "asc", "Sort direction: asc or desc")
}

// stateFromFlags builds the view state from the shared flags.
func stateFromFlags(cmd *cobra.Command, perPage int) (view.State, error) {
	state := view.NewState(perPage)

	search, _ := cmd.Flags().GetString("search")
	filters, _ := cmd.Flags().GetStringSlice("filter")
	sortField, _ := cmd.Flags().GetString("sort")
	dir, _ := cmd.Flags().GetString("dir")

	state.SetSearchTerm(strings.TrimSpace(search))

	var selected []view.FilterType
	for _, f := range filters {
		ft := view.FilterType(strings.ToUpper(strings.TrimSpace(f)))
		if !ft.IsValid() {
			return state, fmt.Errorf("unknown filter type %q", f)
		}
		selected = append(selected, ft)
	}
	if len(selected) > 0 {
		state.SetFilters(selected)
	}

	field, err := view.ParseSortField(strings.ToLower(sortField))
	if err != nil {
		return state, err
	}
	direction, err := view.ParseDirection(strings.ToLower(dir))
	if err != nil {
		return state, err
	}
	state.SetSort(view.SortConfig{Field: field, Direction: direction})

	return state, nil
}

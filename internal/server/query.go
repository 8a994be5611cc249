package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forestar-be/forestar-facturation/internal/view"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// stateFromQuery reads the view state from the query string:
// search, filter (repeated or comma separated), sort, dir, page and perPage.
func stateFromQuery(c *gin.Context, defaultPerPage int) (view.State, error) {
	state := view.NewState(defaultPerPage)

	state.SearchTerm = strings.TrimSpace(c.Query("search"))

	for _, raw := range c.QueryArray("filter") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			f := view.FilterType(part)
			if !f.IsValid() {
				return state, &models.ValidationError{Field: "filter", Value: part, Message: "unknown filter type"}
			}
			state.Filters = append(state.Filters, f)
		}
	}

	field, err := view.ParseSortField(c.Query("sort"))
	if err != nil {
		return state, &models.ValidationError{Field: "sort", Value: c.Query("sort"), Message: "unknown sort field"}
	}
	dir, err := view.ParseDirection(strings.ToLower(c.Query("dir")))
	if err != nil {
		return state, &models.ValidationError{Field: "dir", Value: c.Query("dir"), Message: "must be asc or desc"}
	}
	state.Sort = view.SortConfig{Field: field, Direction: dir}

	if n, ok, err := positiveInt(c, "page"); err != nil {
		return state, err
	} else if ok {
		state.SetPage(n)
	}
	if n, ok, err := positiveInt(c, "perPage"); err != nil {
		return state, err
	} else if ok {
		state.ItemsPerPage = min(n, 500)
	}
	return state, nil
}

func positiveInt(c *gin.Context, key string) (int, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false, &models.ValidationError{Field: key, Value: raw, Message: "must be a positive integer"}
	}
	return n, true, nil
}

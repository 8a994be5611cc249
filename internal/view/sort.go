package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// SortField is a sortable column. The zero value is the default order.
type SortField string

const (
	SortDefault    SortField = ""
	SortType       SortField = "type"
	SortConfidence SortField = "confidence"
	SortValidated  SortField = "validated"
	SortAmount     SortField = "amount"
	SortDate       SortField = "date"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortConfig selects the row order.
type SortConfig struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// ParseSortField validates a field name. An empty name is the default order.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortDefault, SortType, SortConfidence, SortValidated, SortAmount, SortDate:
		return f, nil
	}
	return SortDefault, fmt.Errorf("unknown sort field %q", s)
}

// ParseDirection validates a direction. An empty value is ascending.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case "":
		return Asc, nil
	case Asc, Desc:
		return d, nil
	}
	return Asc, fmt.Errorf("unknown sort direction %q", s)
}

// ToggleSort is the header click cycle: a new field sorts ascending, the same
// field flips to descending, and a second flip clears back to the default.
func ToggleSort(cfg SortConfig, field SortField) SortConfig {
	if field == SortDefault || cfg.Field != field {
		return SortConfig{Field: field, Direction: Asc}
	}
	if cfg.Direction != Desc {
		return SortConfig{Field: field, Direction: Desc}
	}
	return SortConfig{Field: SortDefault, Direction: Asc}
}

// Sort returns a stably sorted copy of items.
//
// The default order puts rows that are validated with a transaction after all
// others, whatever the direction, then orders each part by effective
// confidence in the configured direction.
func Sort(items []DisplayItem, cfg SortConfig) []DisplayItem {
	out := make([]DisplayItem, len(items))
	copy(out, items)

	desc := cfg.Direction == Desc
	compare := func(a, b DisplayItem) int {
		switch cfg.Field {
		case SortType:
			return compareStrings(a.SortValue(), b.SortValue())
		case SortConfidence:
			return compareFloats(confidenceKey(a), confidenceKey(b))
		case SortValidated:
			return compareFloats(float64(validationOrdinal(a)), float64(validationOrdinal(b)))
		case SortAmount:
			return compareFloats(amountKey(a), amountKey(b))
		case SortDate:
			return compareStrings(dateKey(a), dateKey(b))
		}
		return compareFloats(confidenceKey(a), confidenceKey(b))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if cfg.Field == SortDefault {
			va, vb := validatedKey(a), validatedKey(b)
			if va != vb {
				return vb
			}
		}
		c := compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// confidenceKey is the effective confidence, -1 for multiple rows.
func confidenceKey(item DisplayItem) float64 {
	if s, ok := item.(*SingleItem); ok {
		return s.Confidence()
	}
	return -1
}

func validatedKey(item DisplayItem) bool {
	s, ok := item.(*SingleItem)
	return ok && IsEffectivelyValidated(s.Match, s.Transaction)
}

// validationOrdinal ranks review states: validated 3, pending 2, rejected 1,
// no transaction 0, multiple -1.
func validationOrdinal(item DisplayItem) int {
	s, ok := item.(*SingleItem)
	if !ok {
		return -1
	}
	if s.Match.ValidationStatus == models.ValidationRejected {
		return 1
	}
	if s.Transaction == nil {
		return 0
	}
	switch s.Match.ValidationStatus {
	case models.ValidationValidated:
		return 3
	default:
		return 2
	}
}

// amountKey is the invoice total including tax, 0 for multiple rows or when
// the invoice is unknown.
func amountKey(item DisplayItem) float64 {
	if s, ok := item.(*SingleItem); ok && s.Invoice != nil {
		return s.Invoice.MontantTTC
	}
	return 0
}

var dateLayouts = []string{"02/01/2006", "2006-01-02", time.RFC3339, "02-01-2006"}

// dateKey is the booking date of the shown transaction, empty for multiple
// rows and rows without one. Recognised dates compare chronologically.
func dateKey(item DisplayItem) string {
	s, ok := item.(*SingleItem)
	if !ok {
		return ""
	}
	tx := s.Displayed()
	if tx == nil {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, tx.DateComptable); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return tx.DateComptable
}

package view

import (
	"fmt"
	"testing"
)

func numberedItems(n int) []DisplayItem {
	items := make([]DisplayItem, n)
	for i := range items {
		items[i] = &SingleItem{InvoiceID: fmt.Sprintf("inv-%02d", i)}
	}
	return items
}

func TestPaginate(t *testing.T) {
	items := numberedItems(23)

	tests := []struct {
		page       int
		wantStart  int
		wantEnd    int
		wantFirst  string
		wantLength int
	}{
		{1, 0, 10, "inv-00", 10},
		{2, 10, 20, "inv-10", 10},
		{3, 20, 23, "inv-20", 3},
		{4, 23, 23, "", 0},
		{0, 0, 10, "inv-00", 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			p := Paginate(items, tt.page, 10)
			if p.TotalItems != 23 || p.TotalPages != 3 {
				t.Errorf("totals = %d items / %d pages, want 23 / 3", p.TotalItems, p.TotalPages)
			}
			if p.StartIndex != tt.wantStart || p.EndIndex != tt.wantEnd {
				t.Errorf("indexes = [%d,%d), want [%d,%d)", p.StartIndex, p.EndIndex, tt.wantStart, tt.wantEnd)
			}
			if len(p.Items) != tt.wantLength {
				t.Fatalf("len(Items) = %d, want %d", len(p.Items), tt.wantLength)
			}
			if tt.wantLength > 0 && p.Items[0].Key() != tt.wantFirst {
				t.Errorf("first item = %s, want %s", p.Items[0].Key(), tt.wantFirst)
			}
		})
	}
}

func TestPaginatePageSizesSumToTotal(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 57} {
		for _, perPage := range []int{1, 7, 10, 25} {
			items := numberedItems(n)
			first := Paginate(items, 1, perPage)
			sum := 0
			for page := 1; page <= first.TotalPages; page++ {
				sum += len(Paginate(items, page, perPage).Items)
			}
			if sum != n {
				t.Errorf("n=%d perPage=%d: pages hold %d items, want %d", n, perPage, sum, n)
			}
		}
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 1, 10)
	if p.TotalPages != 0 || len(p.Items) != 0 {
		t.Errorf("Paginate(nil) = %+v, want an empty page", p)
	}
}

package view

import (
	"encoding/json"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// DisplayItem is one projected row: a *SingleItem or a *MultipleItem.
type DisplayItem interface {
	// Key is the invoice id of the row.
	Key() string
	// SortValue is the row's type key: MULTIPLE, MANUAL or the match type.
	SortValue() string
	displayItem()
}

// Resolved is a match with the transaction it points to.
type Resolved struct {
	Match       models.Match
	Transaction *models.BankTransaction // nil when unresolved
}

// Confidence is the effective confidence of the match.
func (r Resolved) Confidence() float64 {
	return EffectiveConfidence(r.Match, r.Transaction)
}

// Displayed is the transaction shown for the match, nil when rejected.
func (r Resolved) Displayed() *models.BankTransaction {
	return DisplayTransaction(r.Match, r.Transaction)
}

// SingleItem is an invoice with exactly one match.
type SingleItem struct {
	InvoiceID string
	Invoice   *models.Invoice
	Resolved
}

func (s *SingleItem) Key() string { return s.InvoiceID }

func (s *SingleItem) SortValue() string {
	if s.Match.IsManualMatch {
		return string(FilterManual)
	}
	return string(s.Match.MatchType)
}

func (*SingleItem) displayItem() {}

// MultipleItem is an invoice with several competing matches.
type MultipleItem struct {
	InvoiceID string
	Invoice   *models.Invoice
	Matches   []Resolved
}

func (m *MultipleItem) Key() string { return m.InvoiceID }

func (*MultipleItem) SortValue() string { return string(FilterMultiple) }

func (*MultipleItem) displayItem() {}

// DisplayItems turns groups into rows. Multiple groups become one
// MultipleItem each, other groups a SingleItem for their match.
func DisplayItems(groups []Group, lookup *Lookup) []DisplayItem {
	items := make([]DisplayItem, 0, len(groups))
	for _, g := range groups {
		if len(g.Matches) == 0 {
			continue
		}
		if g.IsOriginallyMultiple {
			resolved := make([]Resolved, len(g.Matches))
			for i, m := range g.Matches {
				resolved[i] = Resolved{Match: m, Transaction: lookup.TransactionOf(m)}
			}
			items = append(items, &MultipleItem{InvoiceID: g.InvoiceID, Invoice: g.Invoice, Matches: resolved})
			continue
		}
		m := g.Matches[0]
		items = append(items, &SingleItem{
			InvoiceID: g.InvoiceID,
			Invoice:   g.Invoice,
			Resolved:  Resolved{Match: m, Transaction: lookup.TransactionOf(m)},
		})
	}
	return items
}

type resolvedJSON struct {
	Match       models.Match            `json:"match"`
	Transaction *models.BankTransaction `json:"transaction"`
	Confidence  float64                 `json:"effectiveConfidence"`
}

func newResolvedJSON(r Resolved) resolvedJSON {
	return resolvedJSON{Match: r.Match, Transaction: r.Displayed(), Confidence: r.Confidence()}
}

// MarshalJSON encodes the row with a "single" type tag.
func (s *SingleItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string          `json:"type"`
		InvoiceID string          `json:"invoiceId"`
		Invoice   *models.Invoice `json:"invoice"`
		SortValue string          `json:"sortValue"`
		resolvedJSON
	}{"single", s.InvoiceID, s.Invoice, s.SortValue(), newResolvedJSON(s.Resolved)})
}

// MarshalJSON encodes the row with a "multiple" type tag.
func (m *MultipleItem) MarshalJSON() ([]byte, error) {
	matches := make([]resolvedJSON, len(m.Matches))
	for i, r := range m.Matches {
		matches[i] = newResolvedJSON(r)
	}
	return json.Marshal(struct {
		Type      string          `json:"type"`
		InvoiceID string          `json:"invoiceId"`
		Invoice   *models.Invoice `json:"invoice"`
		SortValue string          `json:"sortValue"`
		Matches   []resolvedJSON  `json:"matches"`
	}{"multiple", m.InvoiceID, m.Invoice, m.SortValue(), matches})
}

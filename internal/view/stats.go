package view

import (
	"github.com/shopspring/decimal"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// UnmatchedInvoices returns the invoices with no match, or whose first match
// is of type NONE or shows no transaction. A rejected match shows none.
func UnmatchedInvoices(invoices []models.Invoice, matches []models.Match, lookup *Lookup) []models.Invoice {
	first := make(map[string]models.Match, len(matches))
	for _, m := range matches {
		if _, ok := first[m.InvoiceID]; !ok {
			first[m.InvoiceID] = m
		}
	}

	var out []models.Invoice
	for _, inv := range invoices {
		m, ok := first[inv.ID]
		if !ok || m.MatchType == models.MatchTypeNone || DisplayTransaction(m, lookup.TransactionOf(m)) == nil {
			out = append(out, inv)
		}
	}
	return out
}

// UnmatchedTransactions returns the transactions no match refers to.
// Rejected matches do not hold their transaction.
func UnmatchedTransactions(transactions []models.BankTransaction, matches []models.Match) []models.BankTransaction {
	used := make(map[string]bool, len(matches))
	for _, m := range matches {
		if m.HasTransaction() && m.ValidationStatus != models.ValidationRejected {
			used[m.TransactionID] = true
		}
	}

	var out []models.BankTransaction
	for _, tx := range transactions {
		if !used[tx.ID] {
			out = append(out, tx)
		}
	}
	return out
}

// Statistics summarises a reconciliation snapshot.
type Statistics struct {
	TotalInvoices         int                      `json:"totalInvoices"`
	TotalTransactions     int                      `json:"totalTransactions"`
	TotalMatches          int                      `json:"totalMatches"`
	MultipleGroups        int                      `json:"multipleGroups"`
	Validated             int                      `json:"validated"`
	Rejected              int                      `json:"rejected"`
	Manual                int                      `json:"manual"`
	ByType                map[models.MatchType]int `json:"byType"`
	UnmatchedInvoices     int                      `json:"unmatchedInvoices"`
	UnmatchedTransactions int                      `json:"unmatchedTransactions"`
	MatchedAmount         decimal.Decimal          `json:"matchedAmount"`
	UnmatchedAmount       decimal.Decimal          `json:"unmatchedAmount"`
}

// ComputeStatistics aggregates counts and invoice totals for a snapshot.
// Amounts are invoice totals including tax.
func ComputeStatistics(details *models.ReconciliationDetails) Statistics {
	stats := Statistics{
		ByType:          make(map[models.MatchType]int),
		MatchedAmount:   decimal.Zero,
		UnmatchedAmount: decimal.Zero,
	}
	if details == nil {
		return stats
	}

	lookup := NewLookup(details.Invoices, details.Transactions)
	groups := GroupMatches(details.Matches, lookup)

	stats.TotalInvoices = len(details.Invoices)
	stats.TotalTransactions = len(details.Transactions)
	stats.TotalMatches = len(details.Matches)
	stats.MultipleGroups = len(MultipleGroups(groups))

	for _, m := range details.Matches {
		stats.ByType[m.MatchType]++
		switch m.ValidationStatus {
		case models.ValidationValidated:
			stats.Validated++
		case models.ValidationRejected:
			stats.Rejected++
		}
		if m.IsManualMatch {
			stats.Manual++
		}
	}

	unmatched := UnmatchedInvoices(details.Invoices, details.Matches, lookup)
	unmatchedIDs := make(map[string]bool, len(unmatched))
	for _, inv := range unmatched {
		unmatchedIDs[inv.ID] = true
		stats.UnmatchedAmount = stats.UnmatchedAmount.Add(decimal.NewFromFloat(inv.MontantTTC))
	}
	for _, inv := range details.Invoices {
		if !unmatchedIDs[inv.ID] {
			stats.MatchedAmount = stats.MatchedAmount.Add(decimal.NewFromFloat(inv.MontantTTC))
		}
	}
	stats.UnmatchedInvoices = len(unmatched)
	stats.UnmatchedTransactions = len(UnmatchedTransactions(details.Transactions, details.Matches))
	return stats
}

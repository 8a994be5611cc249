package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/forestar-be/forestar-facturation/internal/view"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// Separator between the alternatives of a multiple row.
const alternativeSeparator = " | OU | "

// Placeholders used when a value is missing.
const (
	notAvailable  = "N/A"
	noTransaction = "Aucune transaction"
)

// Headers are the columns of the data sheet.
var Headers = []string{
	"Référence Facture",
	"Client",
	"Montant Facture (€)",
	"Date Facturation",
	"Libellé Transaction",
	"Montant Transaction (€)",
	"Date Transaction",
	"Détails Transaction",
	"Notes",
	"Type de Correspondance",
	"Confiance (%)",
}

var columnWidths = []float64{20, 30, 15, 15, 60, 30, 30, 60, 60, 20, 12}

// Row is one line of the data sheet.
type Row struct {
	InvoiceRef         string
	Client             string
	InvoiceAmount      decimal.Decimal
	InvoiceDate        string
	TransactionLabel   string
	TransactionDate    string
	TransactionDetails string
	Notes              string
	MatchType          string

	// Multiple is set for collapsed conflict rows. Their transaction amounts
	// and confidence are text; single rows carry numbers.
	Multiple           bool
	TransactionAmount  decimal.Decimal
	TransactionAmounts string
	Confidence         int64
}

// Values returns the cells of the row in Headers order.
func (r Row) Values() []interface{} {
	var amount, confidence interface{}
	if r.Multiple {
		amount, confidence = r.TransactionAmounts, "Variable"
	} else {
		amount, confidence = r.TransactionAmount.InexactFloat64(), r.Confidence
	}
	return []interface{}{
		r.InvoiceRef,
		r.Client,
		r.InvoiceAmount.InexactFloat64(),
		r.InvoiceDate,
		r.TransactionLabel,
		amount,
		r.TransactionDate,
		r.TransactionDetails,
		r.Notes,
		r.MatchType,
		confidence,
	}
}

// BuildRows flattens display items into rows, one per item.
func BuildRows(items []view.DisplayItem) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case *view.SingleItem:
			rows = append(rows, singleRow(it))
		case *view.MultipleItem:
			rows = append(rows, multipleRow(it))
		}
	}
	return rows
}

func invoiceColumns(inv *models.Invoice) (ref, client string, amount decimal.Decimal, date string) {
	if inv == nil {
		return notAvailable, notAvailable, decimal.Zero, notAvailable
	}
	return orDefault(inv.Ref, notAvailable),
		orDefault(inv.Tiers, notAvailable),
		round2(inv.MontantTTC),
		orDefault(inv.DateFacturation, notAvailable)
}

func singleRow(it *view.SingleItem) Row {
	ref, client, amount, date := invoiceColumns(it.Invoice)
	row := Row{
		InvoiceRef:         ref,
		Client:             client,
		InvoiceAmount:      amount,
		InvoiceDate:        date,
		TransactionLabel:   noTransaction,
		TransactionAmount:  decimal.Zero,
		TransactionDate:    notAvailable,
		TransactionDetails: notAvailable,
		Notes:              strings.Join(it.Match.Notes, "; "),
		MatchType:          view.MatchLabel(it.Match),
		Confidence:         decimal.NewFromFloat(it.Confidence()).Round(0).IntPart(),
	}
	if tx := it.Displayed(); tx != nil {
		row.TransactionLabel = orDefault(tx.Libelles, noTransaction)
		row.TransactionAmount = round2(tx.Montant)
		row.TransactionDate = orDefault(tx.DateComptable, notAvailable)
		row.TransactionDetails = orDefault(tx.DetailsMouvement, notAvailable)
	}
	return row
}

func multipleRow(it *view.MultipleItem) Row {
	ref, client, amount, date := invoiceColumns(it.Invoice)

	var labels, amounts, dates, details, notes []string
	for _, r := range it.Matches {
		tx := r.Displayed()
		if tx == nil {
			labels = append(labels, noTransaction)
			amounts = append(amounts, "0 €")
			dates = append(dates, notAvailable)
			details = append(details, notAvailable)
		} else {
			labels = append(labels, orDefault(tx.Libelles, noTransaction))
			amounts = append(amounts, formatEuros(tx.Montant))
			dates = append(dates, orDefault(tx.DateComptable, notAvailable))
			details = append(details, orDefault(tx.DetailsMouvement, notAvailable))
		}
		if n := strings.Join(r.Match.Notes, "; "); n != "" {
			notes = append(notes, n)
		}
	}

	return Row{
		InvoiceRef:         ref,
		Client:             client,
		InvoiceAmount:      amount,
		InvoiceDate:        date,
		TransactionLabel:   strings.Join(labels, alternativeSeparator),
		TransactionAmounts: strings.Join(amounts, alternativeSeparator),
		TransactionDate:    strings.Join(dates, alternativeSeparator),
		TransactionDetails: strings.Join(details, alternativeSeparator),
		Notes:              strings.Join(notes, " | "),
		MatchType:          "Multiple",
		Multiple:           true,
	}
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func formatEuros(v float64) string {
	if v == 0 {
		return "0 €"
	}
	return round2(v).StringFixed(2) + " €"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

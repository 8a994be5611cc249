package view

import "github.com/forestar-be/forestar-facturation/pkg/models"

// fixture: invoice A has two competing matches, B is validated, C is manual.
func fixture() ([]models.Match, []models.Invoice, []models.BankTransaction) {
	invoices := []models.Invoice{
		{ID: "A", Ref: "FAC-001", Tiers: "Dupont SA", MontantHT: 100, MontantTTC: 121},
		{ID: "B", Ref: "FAC-002", Tiers: "Martin", MontantHT: 41.32, MontantTTC: 50},
		{ID: "C", Ref: "FAC-003", Tiers: "Garage Leroy", MontantHT: 247.93, MontantTTC: 300},
		{ID: "D", Ref: "FAC-004", Tiers: "Sans Paiement", MontantTTC: 75},
	}
	transactions := []models.BankTransaction{
		{ID: "t1", Libelles: "VIR DUPONT", DetailsMouvement: "Paiement facture FAC-001", DateComptable: "05/01/2025", Montant: 121},
		{ID: "t2", Libelles: "VIR INCONNU", DetailsMouvement: "ref 8891", DateComptable: "03/01/2025", Montant: 121},
		{ID: "t3", Libelles: "VIR MARTIN", DetailsMouvement: "Acompte", DateComptable: "10/01/2025", Montant: 50},
		{ID: "t4", Libelles: "VIR LEROY", DetailsMouvement: "Entretien", DateComptable: "02/01/2025", Montant: 300},
		{ID: "t5", Libelles: "FRAIS BANCAIRES", DateComptable: "31/01/2025", Montant: -4.5},
	}
	matches := []models.Match{
		{ID: "m1", InvoiceID: "A", TransactionID: "t1", MatchType: models.MatchTypeExactRef, Confidence: 95, ValidationStatus: models.ValidationPending},
		{ID: "m2", InvoiceID: "A", TransactionID: "t2", MatchType: models.MatchTypeFuzzyName, Confidence: 60, ValidationStatus: models.ValidationPending},
		{ID: "m3", InvoiceID: "B", TransactionID: "t3", MatchType: models.MatchTypeSimpleName, Confidence: 70, ValidationStatus: models.ValidationValidated},
		{ID: "m4", InvoiceID: "C", TransactionID: "t4", MatchType: models.MatchTypeExactAmount, Confidence: 80, ValidationStatus: models.ValidationPending, IsManualMatch: true},
	}
	return matches, invoices, transactions
}

func fixtureGroups() ([]Group, *Lookup) {
	matches, invoices, transactions := fixture()
	lookup := NewLookup(invoices, transactions)
	return GroupMatches(matches, lookup), lookup
}

func keys(items []DisplayItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Key()
	}
	return out
}

func groupIDs(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.InvoiceID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package view

import "github.com/forestar-be/forestar-facturation/pkg/models"

// Lookup resolves invoice and transaction ids against a snapshot.
type Lookup struct {
	invoices     map[string]*models.Invoice
	transactions map[string]*models.BankTransaction
}

// NewLookup indexes the given records by id. Later duplicates win.
func NewLookup(invoices []models.Invoice, transactions []models.BankTransaction) *Lookup {
	l := &Lookup{
		invoices:     make(map[string]*models.Invoice, len(invoices)),
		transactions: make(map[string]*models.BankTransaction, len(transactions)),
	}
	for i := range invoices {
		l.invoices[invoices[i].ID] = &invoices[i]
	}
	for i := range transactions {
		l.transactions[transactions[i].ID] = &transactions[i]
	}
	return l
}

// Invoice returns the invoice with the given id, or nil.
func (l *Lookup) Invoice(id string) *models.Invoice {
	if l == nil || id == "" {
		return nil
	}
	return l.invoices[id]
}

// Transaction returns the transaction with the given id, or nil.
func (l *Lookup) Transaction(id string) *models.BankTransaction {
	if l == nil || id == "" {
		return nil
	}
	return l.transactions[id]
}

// TransactionOf resolves the transaction a match points to, or nil.
func (l *Lookup) TransactionOf(m models.Match) *models.BankTransaction {
	return l.Transaction(m.TransactionID)
}

package models

import "time"

// MatchType is the strategy the external matcher used to pair an invoice with a transaction.
type MatchType string

const (
	MatchTypeExactRef      MatchType = "EXACT_REF"
	MatchTypeExactAmount   MatchType = "EXACT_AMOUNT"
	MatchTypeRefinedAmount MatchType = "REFINED_AMOUNT"
	MatchTypeSimpleName    MatchType = "SIMPLE_NAME"
	MatchTypeFuzzyName     MatchType = "FUZZY_NAME"
	MatchTypeCombined      MatchType = "COMBINED"
	MatchTypeNone          MatchType = "NONE"
)

// MatchTypes lists every match type in display order.
var MatchTypes = []MatchType{
	MatchTypeExactRef,
	MatchTypeExactAmount,
	MatchTypeRefinedAmount,
	MatchTypeSimpleName,
	MatchTypeFuzzyName,
	MatchTypeCombined,
	MatchTypeNone,
}

// IsValid reports whether t is one of the known match types.
func (t MatchType) IsValid() bool {
	for _, known := range MatchTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ValidationStatus is the human review state of a match.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "PENDING"
	ValidationValidated ValidationStatus = "VALIDATED"
	ValidationRejected  ValidationStatus = "REJECTED"
)

// Match links one invoice to at most one bank transaction.
type Match struct {
	ID               string           `json:"id"`
	InvoiceID        string           `json:"invoiceId"`
	TransactionID    string           `json:"transactionId,omitempty"` // empty when no transaction is associated
	MatchType        MatchType        `json:"matchType"`
	Confidence       float64          `json:"confidence"`
	Score            float64          `json:"score,omitempty"`
	Notes            []string         `json:"notes,omitempty"`
	IsManualMatch    bool             `json:"isManualMatch"`
	ValidationStatus ValidationStatus `json:"validationStatus"`
	CreatedAt        time.Time        `json:"createdAt,omitzero"`
	UpdatedAt        time.Time        `json:"updatedAt,omitzero"`
}

// HasTransaction reports whether a transaction id is set on the match.
func (m *Match) HasTransaction() bool {
	return m.TransactionID != ""
}

// MatchSuggestion is a ranked candidate transaction for an invoice.
type MatchSuggestion struct {
	Transaction BankTransaction `json:"transaction"`
	MatchType   MatchType       `json:"matchType"`
	Confidence  float64         `json:"confidence"`
	Score       float64         `json:"score,omitempty"`
	Reasons     []string        `json:"reasons,omitempty"`
}

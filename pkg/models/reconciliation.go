package models

import (
	"fmt"
	"time"
)

// ReconciliationStatus is the lifecycle state of a reconciliation job on the API side.
type ReconciliationStatus string

const (
	StatusPending    ReconciliationStatus = "PENDING"
	StatusProcessing ReconciliationStatus = "PROCESSING"
	StatusCompleted  ReconciliationStatus = "COMPLETED"
	StatusError      ReconciliationStatus = "ERROR"
)

// IsActive reports whether the job is still queued or running.
func (s ReconciliationStatus) IsActive() bool {
	return s == StatusPending || s == StatusProcessing
}

// IsTerminal reports whether the job has finished, successfully or not.
func (s ReconciliationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// ReconciliationSummary is a reconciliation as listed, without its records.
type ReconciliationSummary struct {
	ID                   string               `json:"id"`
	Status               ReconciliationStatus `json:"status"`
	Title                string               `json:"title,omitempty"`
	StartTime            *time.Time           `json:"startTime,omitempty"`
	EndTime              *time.Time           `json:"endTime,omitempty"`
	InvoicesFileName     string               `json:"invoicesFileName,omitempty"`
	TransactionsFileName string               `json:"transactionsFileName,omitempty"`
	TotalInvoices        int                  `json:"totalInvoices"`
	TotalTransactions    int                  `json:"totalTransactions"`
	ExactMatches         int                  `json:"exactMatches"`
	FuzzyMatches         int                  `json:"fuzzyMatches"`
	NoMatches            int                  `json:"noMatches"`
	TotalMatchedAmount   float64              `json:"totalMatchedAmount"`
	TotalUnmatchedAmount float64              `json:"totalUnmatchedAmount"`
	ReconciliationRate   float64              `json:"reconciliationRate"`
	ErrorMessage         string               `json:"errorMessage,omitempty"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt,omitzero"`
}

// ReferenceDate is the date a reconciliation is filed under: its start time when
// known, its creation time otherwise.
func (r *ReconciliationSummary) ReferenceDate() time.Time {
	if r.StartTime != nil && !r.StartTime.IsZero() {
		return *r.StartTime
	}
	return r.CreatedAt
}

// DisplayTitle returns the title, or a dated fallback when none was set.
func (r *ReconciliationSummary) DisplayTitle(loc *time.Location) string {
	if r.Title != "" {
		return r.Title
	}
	date := r.ReferenceDate()
	if loc != nil {
		date = date.In(loc)
	}
	return fmt.Sprintf("Réconciliation du %s", date.Format("02/01/2006"))
}

// ReconciliationDetails is the full snapshot of a reconciliation.
type ReconciliationDetails struct {
	ReconciliationSummary
	Invoices     []Invoice         `json:"invoices"`
	Transactions []BankTransaction `json:"transactions"`
	Matches      []Match           `json:"matches"`
}

// StatusReport is the progress of a running reconciliation job.
type StatusReport struct {
	ID                string               `json:"id,omitempty"`
	Status            ReconciliationStatus `json:"status"`
	Progress          int                  `json:"progress"`
	InvoicesCount     int                  `json:"invoicesCount,omitempty"`
	TransactionsCount int                  `json:"transactionsCount,omitempty"`
	Message           string               `json:"message,omitempty"`
	Error             string               `json:"error,omitempty"`
}

// StatusMessage renders the report as a user-facing message.
func (s *StatusReport) StatusMessage() string {
	switch s.Status {
	case StatusPending:
		return "En attente de traitement..."
	case StatusProcessing:
		return fmt.Sprintf("Traitement en cours... (%d%%)", s.Progress)
	case StatusCompleted:
		return "Réconciliation terminée"
	case StatusError:
		if s.Error != "" {
			return s.Error
		}
		return "Erreur lors de la réconciliation"
	default:
		return "Statut inconnu"
	}
}

// UploadResult is returned when a new reconciliation job is accepted.
type UploadResult struct {
	Success          bool   `json:"success"`
	ReconciliationID string `json:"reconciliationId"`
	Message          string `json:"message,omitempty"`
}

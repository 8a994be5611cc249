package models

import (
	"fmt"
	"strings"
)

// ValidationError is a local input error. It never reaches the network.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation failed for %s (%q): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// CreateMatchRequest creates a new match for an invoice.
type CreateMatchRequest struct {
	InvoiceID     string    `json:"invoiceId"`
	TransactionID string    `json:"transactionId,omitempty"`
	MatchType     MatchType `json:"matchType,omitempty"`
	IsManualMatch bool      `json:"isManualMatch"`
	Notes         []string  `json:"notes,omitempty"`
}

// Validate checks the request before it is sent.
func (r *CreateMatchRequest) Validate() error {
	if strings.TrimSpace(r.InvoiceID) == "" {
		return &ValidationError{Field: "invoiceId", Message: "no invoice selected"}
	}
	if r.MatchType != "" && !r.MatchType.IsValid() {
		return &ValidationError{Field: "matchType", Value: string(r.MatchType), Message: "unknown match type"}
	}
	return nil
}

// UpdateMatchRequest is a partial update. Nil fields are left untouched.
type UpdateMatchRequest struct {
	TransactionID *string    `json:"transactionId,omitempty"`
	MatchType     *MatchType `json:"matchType,omitempty"`
	Confidence    *float64   `json:"confidence,omitempty"`
	IsManualMatch *bool      `json:"isManualMatch,omitempty"`
	Notes         []string   `json:"notes,omitempty"`
}

// Validate checks the request before it is sent.
func (r *UpdateMatchRequest) Validate() error {
	if r.TransactionID == nil && r.MatchType == nil && r.Confidence == nil && r.IsManualMatch == nil && r.Notes == nil {
		return &ValidationError{Field: "match", Message: "nothing to update"}
	}
	if r.MatchType != nil && !r.MatchType.IsValid() {
		return &ValidationError{Field: "matchType", Value: string(*r.MatchType), Message: "unknown match type"}
	}
	if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 100) {
		return &ValidationError{Field: "confidence", Value: fmt.Sprintf("%g", *r.Confidence), Message: "must be between 0 and 100"}
	}
	return nil
}

// ReviewRequest carries the notes attached to a validate or reject action.
type ReviewRequest struct {
	Notes []string `json:"notes"`
}

// Default notes recorded by review actions.
const (
	NoteValidated     = "Correspondance validée par l'utilisateur"
	NoteRejected      = "Correspondance rejetée par l'utilisateur"
	NoteManualChoice  = "Choix manuel - correspondance validée par l'utilisateur"
	NoteManualCreated = "Match manuel créé par l'utilisateur"
)

// UpdateTitleRequest renames a reconciliation.
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// Validate checks the request before it is sent.
func (r *UpdateTitleRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	if len([]rune(r.Title)) > 200 {
		return &ValidationError{Field: "title", Message: "title is limited to 200 characters"}
	}
	return nil
}

package api

import (
	"context"
	"net/http"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// CreateMatch creates a match. Invalid requests fail locally.
func (c *Client) CreateMatch(ctx context.Context, reconciliationID string, req models.CreateMatchRequest) (*models.Match, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var m models.Match
	if err := c.do(ctx, "CreateMatch", http.MethodPost, c.endpoint("reconciliations", reconciliationID, "matches"), req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMatch applies a partial update to a match.
func (c *Client) UpdateMatch(ctx context.Context, reconciliationID, matchID string, req models.UpdateMatchRequest) (*models.Match, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var m models.Match
	if err := c.do(ctx, "UpdateMatch", http.MethodPut, c.endpoint("reconciliations", reconciliationID, "matches", matchID), req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMatch removes a match.
func (c *Client) DeleteMatch(ctx context.Context, reconciliationID, matchID string) error {
	return c.do(ctx, "DeleteMatch", http.MethodDelete, c.endpoint("reconciliations", reconciliationID, "matches", matchID), nil, nil)
}

// ValidateMatch marks a match as validated.
func (c *Client) ValidateMatch(ctx context.Context, reconciliationID, matchID string, notes []string) (*models.Match, error) {
	return c.review(ctx, "ValidateMatch", reconciliationID, matchID, "validate", notes, models.NoteValidated)
}

// RejectMatch marks a match as rejected.
func (c *Client) RejectMatch(ctx context.Context, reconciliationID, matchID string, notes []string) (*models.Match, error) {
	return c.review(ctx, "RejectMatch", reconciliationID, matchID, "reject", notes, models.NoteRejected)
}

func (c *Client) review(ctx context.Context, op, reconciliationID, matchID, action string, notes []string, defaultNote string) (*models.Match, error) {
	if len(notes) == 0 {
		notes = []string{defaultNote}
	}
	var m models.Match
	target := c.endpoint("reconciliations", reconciliationID, "matches", matchID, action)
	if err := c.do(ctx, op, http.MethodPost, target, models.ReviewRequest{Notes: notes}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// FetchSuggestions returns ranked candidate transactions for an invoice.
func (c *Client) FetchSuggestions(ctx context.Context, reconciliationID, invoiceID string) ([]models.MatchSuggestion, error) {
	var suggestions []models.MatchSuggestion
	target := c.endpoint("reconciliations", reconciliationID, "invoices", invoiceID, "suggestions")
	if err := c.do(ctx, "FetchSuggestions", http.MethodGet, target, nil, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

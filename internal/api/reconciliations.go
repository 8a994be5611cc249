package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// UploadFiles starts a reconciliation from an invoices export and a bank
// statement. The files are sent as-is.
func (c *Client) UploadFiles(ctx context.Context, invoicesPath, transactionsPath string) (*models.UploadResult, error) {
	const op = "UploadFiles"

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	files := []struct{ field, path string }{
		{"invoices", invoicesPath},
		{"transactions", transactionsPath},
	}
	for _, file := range files {
		if err := attachFile(form, file.field, file.path); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%s: closing form: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload"), &body)
	if err != nil {
		return nil, &APIError{Op: op, Err: fmt.Errorf("%w: %w", ErrRequestFailed, err)}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var result models.UploadResult
	if err := c.send(op, req, &result); err != nil {
		return nil, err
	}
	if result.ReconciliationID == "" {
		return nil, &APIError{Op: op, Message: result.Message, Err: fmt.Errorf("%w: no reconciliation id", ErrInvalidResponse)}
	}

	c.log.Info().Str("reconciliation_id", result.ReconciliationID).Msg("Reconciliation started")
	return &result, nil
}

func attachFile(form *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s file: %w", field, err)
	}
	defer f.Close()

	part, err := form.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s file: %w", field, err)
	}
	return nil
}

// GetStatus returns the progress of a reconciliation job.
func (c *Client) GetStatus(ctx context.Context, reconciliationID string) (*models.StatusReport, error) {
	var status models.StatusReport
	if err := c.do(ctx, "GetStatus", http.MethodGet, c.endpoint("reconciliation", reconciliationID, "status"), nil, &status); err != nil {
		return nil, err
	}
	if status.ID == "" {
		status.ID = reconciliationID
	}
	return &status, nil
}

// FetchReconciliation returns the full snapshot of a reconciliation.
func (c *Client) FetchReconciliation(ctx context.Context, reconciliationID string) (*models.ReconciliationDetails, error) {
	var details models.ReconciliationDetails
	if err := c.do(ctx, "FetchReconciliation", http.MethodGet, c.endpoint("reconciliation", reconciliationID, "result"), nil, &details); err != nil {
		return nil, err
	}
	if details.ID == "" {
		details.ID = reconciliationID
	}
	return &details, nil
}

// ListReconciliations returns every reconciliation, newest first as sent by the API.
func (c *Client) ListReconciliations(ctx context.Context) ([]models.ReconciliationSummary, error) {
	var list []models.ReconciliationSummary
	if err := c.do(ctx, "ListReconciliations", http.MethodGet, c.endpoint("reconciliations"), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteReconciliation removes a reconciliation and its matches.
func (c *Client) DeleteReconciliation(ctx context.Context, reconciliationID string) error {
	return c.do(ctx, "DeleteReconciliation", http.MethodDelete, c.endpoint("reconciliations", reconciliationID), nil, nil)
}

// UpdateTitle renames a reconciliation.
func (c *Client) UpdateTitle(ctx context.Context, reconciliationID string, req models.UpdateTitleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return c.do(ctx, "UpdateTitle", http.MethodPut, c.endpoint("reconciliations", reconciliationID, "title"), req, nil)
}

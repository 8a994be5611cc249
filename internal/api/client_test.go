package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "not a url"}); err == nil {
		t.Error("NewClient(not a url) should fail")
	}
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient(default) error = %v", err)
	}
	if got := c.endpoint("reconciliation", "a b", "status"); got != "http://localhost:3001/facturation/reconciliation/a%20b/status" {
		t.Errorf("endpoint = %s", got)
	}
}

func TestFetchReconciliation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/facturation/reconciliation/rec-1/result" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"rec-1","status":"COMPLETED","createdAt":"2025-01-31T10:00:00Z",
			"invoices":[{"id":"A","ref":"FAC-001","tiers":"Dupont","montantTTC":121}],
			"transactions":[{"id":"t1","libelles":"VIR","montant":121,"dateComptable":"05/01/2025"}],
			"matches":[{"id":"m1","invoiceId":"A","transactionId":"t1","matchType":"EXACT_REF","confidence":95,"validationStatus":"PENDING","isManualMatch":false,"notes":[]}]}`)
	})

	details, err := c.FetchReconciliation(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("FetchReconciliation() error = %v", err)
	}
	if details.Status != models.StatusCompleted || len(details.Matches) != 1 || details.Matches[0].MatchType != models.MatchTypeExactRef {
		t.Errorf("details = %+v", details)
	}
}

func TestEnvelopeIsUnwrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":[{"id":"rec-1","status":"PENDING","createdAt":"2025-01-31T10:00:00Z"}]}`)
	})

	list, err := c.ListReconciliations(context.Background())
	if err != nil {
		t.Fatalf("ListReconciliations() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != "rec-1" {
		t.Errorf("list = %+v", list)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusNotFound, `{"message":"Réconciliation non trouvée"}`, ErrNotFound},
		{http.StatusUnauthorized, ``, ErrUnauthorized},
		{http.StatusForbidden, ``, ErrUnauthorized},
		{http.StatusInternalServerError, `oops`, ErrRequestFailed},
		{http.StatusOK, `{"success":false,"message":"Match introuvable"}`, ErrRequestFailed},
		{http.StatusOK, `{not json`, ErrInvalidResponse},
	}

	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			io.WriteString(w, tt.body)
		})
		_, err := c.GetStatus(context.Background(), "rec-1")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d body %q: error = %v, want %v", tt.status, tt.body, err, tt.want)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("status %d: error %T is not an *APIError", tt.status, err)
		}
	}
}

func TestNotFoundKeepsServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Réconciliation non trouvée"}`)
	})

	_, err := c.FetchReconciliation(context.Background(), "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Réconciliation non trouvée" || apiErr.StatusCode != 404 {
		t.Errorf("error = %+v", apiErr)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := NewClient(Options{BaseURL: url})
	if err := c.DeleteMatch(context.Background(), "rec-1", "m1"); !errors.Is(err, ErrTransport) {
		t.Errorf("error = %v, want ErrTransport", err)
	}
}

func TestMatchMutations(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]interface{}
	}
	var calls []call

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, body})
		io.WriteString(w, `{"success":true,"data":{"id":"m1","invoiceId":"A","matchType":"EXACT_REF","validationStatus":"VALIDATED"}}`)
	})
	ctx := context.Background()

	if _, err := c.CreateMatch(ctx, "rec-1", models.CreateMatchRequest{InvoiceID: "A", TransactionID: "t1", IsManualMatch: true}); err != nil {
		t.Fatal(err)
	}
	manual := true
	if _, err := c.UpdateMatch(ctx, "rec-1", "m1", models.UpdateMatchRequest{IsManualMatch: &manual}); err != nil {
		t.Fatal(err)
	}
	m, err := c.ValidateMatch(ctx, "rec-1", "m1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.ValidationStatus != models.ValidationValidated {
		t.Errorf("ValidateMatch() = %+v", m)
	}
	if _, err := c.RejectMatch(ctx, "rec-1", "m1", []string{"mauvais montant"}); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteMatch(ctx, "rec-1", "m1"); err != nil {
		t.Fatal(err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/facturation/reconciliations/rec-1/matches"},
		{http.MethodPut, "/facturation/reconciliations/rec-1/matches/m1"},
		{http.MethodPost, "/facturation/reconciliations/rec-1/matches/m1/validate"},
		{http.MethodPost, "/facturation/reconciliations/rec-1/matches/m1/reject"},
		{http.MethodDelete, "/facturation/reconciliations/rec-1/matches/m1"},
	}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}
	for i, w := range want {
		if calls[i].method != w.method || calls[i].path != w.path {
			t.Errorf("call %d = %s %s, want %s %s", i, calls[i].method, calls[i].path, w.method, w.path)
		}
	}
	notes, _ := calls[2].body["notes"].([]interface{})
	if len(notes) != 1 || notes[0] != models.NoteValidated {
		t.Errorf("validate notes = %v, want the default note", calls[2].body["notes"])
	}
}

func TestCreateMatchValidatesLocally(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("the request must not reach the server")
	})

	_, err := c.CreateMatch(context.Background(), "rec-1", models.CreateMatchRequest{TransactionID: "t1"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "invoiceId" {
		t.Errorf("error = %v, want a ValidationError on invoiceId", err)
	}
}

func TestUploadFiles(t *testing.T) {
	dir := t.TempDir()
	invoices := filepath.Join(dir, "factures.xlsx")
	transactions := filepath.Join(dir, "releve.csv")
	os.WriteFile(invoices, []byte("invoices-content"), 0o644)
	os.WriteFile(transactions, []byte("transactions-content"), 0o644)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/facturation/upload" || r.Method != http.MethodPost {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for field, want := range map[string]string{"invoices": "factures.xlsx", "transactions": "releve.csv"} {
			files := r.MultipartForm.File[field]
			if len(files) != 1 || files[0].Filename != want {
				t.Errorf("field %s = %v, want %s", field, files, want)
			}
		}
		io.WriteString(w, `{"success":true,"reconciliationId":"rec-9","message":"Réconciliation démarrée"}`)
	})

	res, err := c.UploadFiles(context.Background(), invoices, transactions)
	if err != nil {
		t.Fatalf("UploadFiles() error = %v", err)
	}
	if res.ReconciliationID != "rec-9" {
		t.Errorf("ReconciliationID = %q", res.ReconciliationID)
	}
}

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"doulaops-backend/middlewares"
	"doulaops-backend/reconciliation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	invoices []reconciliation.InvoiceRow
	payments []reconciliation.PaymentRow
	err      error
}

func (s *stubStore) ListInvoices(ctx context.Context, limit int) ([]reconciliation.InvoiceRow, error) {
	return s.invoices, s.err
}

func (s *stubStore) ListPayments(ctx context.Context, limit int) ([]reconciliation.PaymentRow, error) {
	return s.payments, s.err
}

func reconciliationApp(store reconciliation.Store) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	engine := reconciliation.NewEngine(store)
	app.Get("/reconciliation", Reconciliation(engine))
	app.Get("/reconciliation/csv", ReconciliationCSV(engine))
	return app
}

func matchingStore() *stubStore {
	return &stubStore{
		invoices: []reconciliation.InvoiceRow{
			{ID: "1", InvoiceNumber: "INV-1", CustomerName: "Jane Doe", TotalAmount: "100.00", Status: "PAID", CreatedAt: "2026-01-05T10:00:00Z"},
		},
		payments: []reconciliation.PaymentRow{
			{ID: "p1", CustomerName: "jane doe", Amount: "100", Status: "COMPLETED", CreatedAt: "2026-01-06"},
		},
	}
}

func TestReconciliationEndpointJSON(t *testing.T) {
	app := reconciliationApp(matchingStore())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/reconciliation", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var body struct {
		Success bool                 `json:"success"`
		Data    []reconciliation.Row `json:"data"`
		Summary json.RawMessage      `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "INV-1", body.Data[0].InvoiceNumber)
	assert.Equal(t, reconciliation.MatchAmountAndCustomer, body.Data[0].MatchType)
	assert.NotEmpty(t, body.Summary)
}

func TestReconciliationEndpointStoreFailure(t *testing.T) {
	app := reconciliationApp(&stubStore{err: errors.New("mirror unreachable")})

	for _, path := range []string{"/reconciliation", "/reconciliation/csv"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode, path)

		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success, path)
		assert.Contains(t, body.Error, "mirror unreachable", path)
	}
}

func TestReconciliationEndpointCSVFormat(t *testing.T) {
	app := reconciliationApp(matchingStore())

	// The JSON route switches to CSV on ?format=csv.
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/reconciliation?format=csv", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="reconciliation.csv"`)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "invoice_id,"), "body starts with the CSV header")

	// The dedicated /csv route serves the same rendering.
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/reconciliation/csv", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
}

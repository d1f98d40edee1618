package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doulaops-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testQuickBooks(baseURL string, client *http.Client) *QuickBooksClient {
	qb := &QuickBooksClient{
		RealmID:  "realm-1",
		BaseURL:  baseURL,
		oauthCfg: &oauth2.Config{ClientID: "id"},
		token:    &oauth2.Token{RefreshToken: "rt"},
	}
	qb.SetTransport(client)
	return qb
}

func TestSyncInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/company/realm-1/salesreceipt", r.URL.Path)

		var receipt map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&receipt))
		assert.Equal(t, "INV-100", receipt["DocNumber"])
		// decimal marshals as a quoted string, keeping cents exact
		assert.Equal(t, "2400", receipt["TotalAmt"])
		lines, ok := receipt["Line"].([]any)
		require.True(t, ok)
		assert.Len(t, lines, 2)

		fmt.Fprint(w, `{"SalesReceipt":{"Id":"sr-1"}}`)
	}))
	defer srv.Close()

	qb := testQuickBooks(srv.URL, srv.Client())

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	invoice := &models.Invoice{
		ID:            100,
		InvoiceNumber: "INV-100",
		Client:        models.Client{FirstName: "Jane", LastName: "Doe"},
		Total:         2400,
		DueDate:       &due,
		CreatedAt:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []models.InvoiceItem{
			{Description: "Birth support package", Quantity: 1, UnitPrice: 2000, LineTotal: 2000},
			{Description: "Postpartum visits", Quantity: 4, UnitPrice: 100, LineTotal: 400},
		},
	}

	id, err := qb.SyncInvoice(context.Background(), invoice)
	require.NoError(t, err)
	assert.Equal(t, "sr-1", id)
}

func TestCompanyName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/company/realm-1/companyinfo/realm-1", r.URL.Path)
		fmt.Fprint(w, `{"CompanyInfo":{"CompanyName":"Gentle Beginnings LLC"}}`)
	}))
	defer srv.Close()

	qb := testQuickBooks(srv.URL, srv.Client())
	name, err := qb.CompanyName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Gentle Beginnings LLC", name)
}

func TestConfigured(t *testing.T) {
	qb := &QuickBooksClient{oauthCfg: &oauth2.Config{}, token: &oauth2.Token{}}
	assert.False(t, qb.Configured())

	qb = &QuickBooksClient{
		RealmID:  "r",
		oauthCfg: &oauth2.Config{ClientID: "c"},
		token:    &oauth2.Token{RefreshToken: "rt"},
	}
	assert.True(t, qb.Configured())
}

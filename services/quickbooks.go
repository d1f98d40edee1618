package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"doulaops-backend/models"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
)

// QuickBooksClient pushes paid invoices into the company ledger as sales
// receipts. Token refresh is delegated to the oauth2 transport.
type QuickBooksClient struct {
	RealmID string
	BaseURL string

	oauthCfg *oauth2.Config
	token    *oauth2.Token
	http     *http.Client
}

// NewQuickBooksFromEnv builds the client from QB_* env credentials. The
// refresh token must have been obtained out of band (QuickBooks' consent
// screen); this backend only refreshes it.
func NewQuickBooksFromEnv(ctx context.Context) *QuickBooksClient {
	cfg := &oauth2.Config{
		ClientID:     os.Getenv("QB_CLIENT_ID"),
		ClientSecret: os.Getenv("QB_CLIENT_SECRET"),
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://appcenter.intuit.com/connect/oauth2",
			TokenURL: "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer",
		},
	}
	token := &oauth2.Token{
		RefreshToken: os.Getenv("QB_REFRESH_TOKEN"),
		Expiry:       time.Now().Add(-time.Hour), // force refresh on first use
	}
	c := &QuickBooksClient{
		RealmID:  os.Getenv("QB_REALM_ID"),
		BaseURL:  envDefault("QB_BASE_URL", "https://quickbooks.api.intuit.com"),
		oauthCfg: cfg,
		token:    token,
	}
	c.http = cfg.Client(ctx, token)
	return c
}

// Configured reports whether full credentials are present; sync endpoints
// return 503 when they are not.
func (q *QuickBooksClient) Configured() bool {
	return q.RealmID != "" && q.oauthCfg.ClientID != "" && q.token.RefreshToken != ""
}

type salesReceiptLine struct {
	Description string          `json:"Description,omitempty"`
	Amount      decimal.Decimal `json:"Amount"`
	DetailType  string          `json:"DetailType"`
}

type salesReceipt struct {
	DocNumber    string             `json:"DocNumber"`
	TxnDate      string             `json:"TxnDate"`
	PrivateNote  string             `json:"PrivateNote,omitempty"`
	TotalAmt     decimal.Decimal    `json:"TotalAmt"`
	Line         []salesReceiptLine `json:"Line"`
	CustomerMemo struct {
		Value string `json:"value"`
	} `json:"CustomerMemo"`
}

// SyncInvoice records a paid invoice as a sales receipt. Line amounts use
// decimals end to end so the ledger never sees float artifacts.
func (q *QuickBooksClient) SyncInvoice(ctx context.Context, inv *models.Invoice) (string, error) {
	receipt := salesReceipt{
		DocNumber:   inv.InvoiceNumber,
		TxnDate:     inv.CreatedAt.Format("2006-01-02"),
		PrivateNote: fmt.Sprintf("Synced from doulaops invoice %d", inv.ID),
		TotalAmt:    decimal.NewFromFloat(inv.Total).Round(2),
	}
	receipt.CustomerMemo.Value = inv.Client.FullName()
	for _, item := range inv.Items {
		receipt.Line = append(receipt.Line, salesReceiptLine{
			Description: item.Description,
			Amount:      decimal.NewFromFloat(item.LineTotal).Round(2),
			DetailType:  "SalesItemLineDetail",
		})
	}

	var created struct {
		SalesReceipt struct {
			Id string `json:"Id"`
		} `json:"SalesReceipt"`
	}
	url := fmt.Sprintf("%s/v3/company/%s/salesreceipt?minorversion=65", q.BaseURL, q.RealmID)
	if err := doJSON(ctx, q.http, http.MethodPost, url, "", receipt, &created); err != nil {
		return "", fmt.Errorf("quickbooks sales receipt: %w", err)
	}
	return created.SalesReceipt.Id, nil
}

// CompanyName fetches the connected company's display name; used by the
// connection-status endpoint as a cheap liveness probe.
func (q *QuickBooksClient) CompanyName(ctx context.Context) (string, error) {
	var out struct {
		CompanyInfo struct {
			CompanyName string `json:"CompanyName"`
		} `json:"CompanyInfo"`
	}
	url := fmt.Sprintf("%s/v3/company/%s/companyinfo/%s?minorversion=65", q.BaseURL, q.RealmID, q.RealmID)
	if err := doJSON(ctx, q.http, http.MethodGet, url, "", nil, &out); err != nil {
		return "", fmt.Errorf("quickbooks company info: %w", err)
	}
	return out.CompanyInfo.CompanyName, nil
}

// SetTransport swaps the underlying HTTP client. Tests use this to route
// calls at a fake server without the oauth2 token exchange.
func (q *QuickBooksClient) SetTransport(client *http.Client) {
	q.http = client
}

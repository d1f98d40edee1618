// Package reconciliation matches invoice projections against payment
// projections by rounded amount and reports aggregate summaries over both
// collections. Everything here is computed fresh per call from a snapshot
// read of the Cloud SQL mirror; nothing is cached or persisted.
package reconciliation

// InvoiceRow is the flat invoice projection handed back by the store.
// Amounts stay decimal strings until the engine normalizes them.
type InvoiceRow struct {
	ID              string `json:"id"`
	InvoiceNumber   string `json:"invoice_number"`
	CustomerName    string `json:"customer_name"`
	TotalAmount     string `json:"total_amount"`
	PaidTotalAmount string `json:"paid_total_amount"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	DueDate         string `json:"due_date"`
}

// PaymentRow is the flat payment projection handed back by the store.
type PaymentRow struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

const (
	MatchAmountOnly        = "amount_only"
	MatchAmountAndCustomer = "amount_and_customer"
)

// Row is one invoice with all candidate payments sharing its rounded amount.
// The payment arrays are parallel: index i describes one candidate payment.
type Row struct {
	InvoiceID        string    `json:"invoice_id"`
	InvoiceNumber    string    `json:"invoice_number"`
	InvoiceCustomer  string    `json:"invoice_customer"`
	InvoiceAmount    float64   `json:"invoice_amount"`
	InvoiceStatus    string    `json:"invoice_status"` // normalized: "paid" | "pending"
	RawStatus        string    `json:"raw_status"`
	InvoiceCreatedAt string    `json:"invoice_created_at"`
	MatchType        string    `json:"match_type"`
	PaymentIDs       []string  `json:"payment_ids"`
	PaymentCustomers []string  `json:"payment_customers"`
	PaymentAmounts   []float64 `json:"payment_amounts"`
	PaymentDates     []string  `json:"payment_dates"`
}

// StatusAgg is one entry of a raw-status breakdown.
type StatusAgg struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// SideSummary aggregates one side (invoices or payments) independently of
// whether anything matched.
type SideSummary struct {
	TotalAmount     float64              `json:"total_amount"`
	Count           int                  `json:"count"`
	PaidAmount      float64              `json:"paid_amount"`
	PaidCount       int                  `json:"paid_count"`
	PendingAmount   float64              `json:"pending_amount"`
	PendingCount    int                  `json:"pending_count"`
	StatusBreakdown map[string]StatusAgg `json:"status_breakdown"`
}

type Summary struct {
	Invoices SideSummary `json:"invoices"`
	Payments SideSummary `json:"payments"`
}

type Result struct {
	Data    []Row   `json:"data"`
	Summary Summary `json:"summary"`
}

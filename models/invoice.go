package models

import "time"

// Invoice is the current/live state of a billing document.
type Invoice struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	InvoiceNumber string `json:"invoice_number" gorm:"unique"`
	ClientID      uint   `json:"-"`
	Client        Client `json:"client" gorm:"foreignKey:ClientID;references:Id"`

	Items    []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Subtotal float64       `json:"subtotal" gorm:"type:numeric(12,2)"`
	Total    float64       `json:"total" gorm:"type:numeric(12,2)"`

	Status  string     `json:"status" gorm:"type:VARCHAR(20);default:PENDING"`
	DueDate *time.Time `json:"due_date"`

	// Payments rollup
	PaidTotal float64 `json:"paid_total" gorm:"type:numeric(12,2)"`

	// Bookkeeping sync marker: the QuickBooks sales receipt id, once pushed.
	QuickbooksID string `json:"quickbooks_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
}

type InvoiceItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	InvoiceID   uint    `json:"-" gorm:"index"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
	LineTotal   float64 `json:"line_total" gorm:"type:numeric(12,2)"`
}

// Payment is one received payment against an invoice, whether recorded by
// hand or confirmed by a Stripe webhook.
type Payment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	InvoiceID       uint      `json:"invoice_id" gorm:"index:idx_payments_invoice_paid_at,priority:1"`
	Amount          float64   `json:"amount" gorm:"type:numeric(12,2)"`
	Method          string    `json:"method"` // "stripe" | "check" | "cash" | ...
	Reference       string    `json:"reference"`
	Status          string    `json:"status" gorm:"type:VARCHAR(20);default:PENDING"`
	StripePaymentID string    `json:"stripe_payment_id" gorm:"index"`
	Note            string    `json:"note"`
	PaidAt          time.Time `json:"paid_at" gorm:"index:idx_payments_invoice_paid_at,priority:2"`
	CreatedAt       time.Time `json:"created_at"`
}

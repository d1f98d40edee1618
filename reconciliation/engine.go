package reconciliation

import (
	"context"
	"strings"

	"doulaops-backend/utils"

	"golang.org/x/sync/errgroup"
)

const (
	defaultLimit = 500
	maxLimit     = 1000
)

// Filters narrows the invoice side of a reconciliation run. All fields are
// optional; payments are never filtered.
type Filters struct {
	// Limit bounds both upstream fetches, not the result set. Zero means the
	// default; out-of-range values are clamped, never rejected.
	Limit int
	// InvoiceStatus: the literals "PENDING"/"PAID" (any case) select the
	// normalized class; any other value is an exact case-insensitive raw match.
	InvoiceStatus string
	// DateFrom/DateTo are inclusive YYYY-MM-DD bounds compared lexically
	// against the first 10 characters of created_at, falling back to due_date.
	DateFrom string
	DateTo   string
}

func (f Filters) limit() int {
	n := f.Limit
	if n == 0 {
		n = defaultLimit
	}
	if n < 1 {
		n = 1
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n
}

// Store is the read-only view of the Cloud SQL mirror the engine consumes.
// Both methods are expected to return an error on connectivity/query failure;
// the engine propagates it unmodified.
type Store interface {
	ListInvoices(ctx context.Context, limit int) ([]InvoiceRow, error)
	ListPayments(ctx context.Context, limit int) ([]PaymentRow, error)
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Run fetches up to limit invoices and payments concurrently, buckets
// payments by rounded amount, and emits one row per filtered invoice that has
// at least one amount-matching payment. A failed fetch aborts the whole run.
func (e *Engine) Run(ctx context.Context, f Filters) (*Result, error) {
	limit := f.limit()

	var invoices []InvoiceRow
	var payments []PaymentRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = e.store.ListInvoices(gctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = e.store.ListPayments(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	filtered := filterInvoices(invoices, f)

	// Bucket payments by rounded cent amount. One pass, O(m).
	buckets := make(map[int64][]PaymentRow, len(payments))
	for _, p := range payments {
		key := cents(ParseAmount(p.Amount))
		buckets[key] = append(buckets[key], p)
	}

	// Iterate invoices in fetch order; no re-sorting.
	rows := make([]Row, 0, len(filtered))
	for _, inv := range filtered {
		amount := invoiceAmount(inv)
		key := cents(amount)
		if key <= 0 {
			continue
		}
		bucket := buckets[key]
		if len(bucket) == 0 {
			continue
		}

		row := Row{
			InvoiceID:        inv.ID,
			InvoiceNumber:    inv.InvoiceNumber,
			InvoiceCustomer:  inv.CustomerName,
			InvoiceAmount:    utils.Round2(amount),
			InvoiceStatus:    NormalizeStatus(inv.Status),
			RawStatus:        inv.Status,
			InvoiceCreatedAt: inv.CreatedAt,
			MatchType:        MatchAmountOnly,
			PaymentIDs:       make([]string, 0, len(bucket)),
			PaymentCustomers: make([]string, 0, len(bucket)),
			PaymentAmounts:   make([]float64, 0, len(bucket)),
			PaymentDates:     make([]string, 0, len(bucket)),
		}

		invCustomer := NormalizeCustomer(inv.CustomerName)
		allCustomersMatch := invCustomer != ""
		for _, p := range bucket {
			if NormalizeCustomer(p.CustomerName) != invCustomer {
				allCustomersMatch = false
			}
			row.PaymentIDs = append(row.PaymentIDs, p.ID)
			row.PaymentCustomers = append(row.PaymentCustomers, p.CustomerName)
			row.PaymentAmounts = append(row.PaymentAmounts, utils.Round2(ParseAmount(p.Amount)))
			row.PaymentDates = append(row.PaymentDates, p.CreatedAt)
		}
		if allCustomersMatch {
			row.MatchType = MatchAmountAndCustomer
		}

		rows = append(rows, row)
	}

	// Summaries are independent of matching: the invoice side reflects the
	// filtered invoice list, the payment side the entire fetched payment list.
	summary := Summary{
		Invoices: summarizeInvoices(filtered),
		Payments: summarizePayments(payments),
	}

	return &Result{Data: rows, Summary: summary}, nil
}

// invoiceAmount prefers total_amount; the fallback to paid_total_amount only
// applies when total_amount is blank, not when it parses to zero.
func invoiceAmount(inv InvoiceRow) float64 {
	if strings.TrimSpace(inv.TotalAmount) != "" {
		return ParseAmount(inv.TotalAmount)
	}
	return ParseAmount(inv.PaidTotalAmount)
}

// invoiceDate yields the lexical comparison key: first 10 chars of
// created_at, falling back to due_date when created_at is blank.
func invoiceDate(inv InvoiceRow) string {
	d := inv.CreatedAt
	if strings.TrimSpace(d) == "" {
		d = inv.DueDate
	}
	if len(d) > 10 {
		d = d[:10]
	}
	return d
}

func filterInvoices(invoices []InvoiceRow, f Filters) []InvoiceRow {
	status := strings.TrimSpace(f.InvoiceStatus)
	wantClass := ""
	switch strings.ToUpper(status) {
	case "PENDING":
		wantClass = "pending"
	case "PAID":
		wantClass = "paid"
	}

	out := make([]InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		if status != "" {
			if wantClass != "" {
				if NormalizeStatus(inv.Status) != wantClass {
					continue
				}
			} else if !strings.EqualFold(inv.Status, status) {
				continue
			}
		}
		if f.DateFrom != "" || f.DateTo != "" {
			d := invoiceDate(inv)
			if f.DateFrom != "" && d < f.DateFrom {
				continue
			}
			if f.DateTo != "" && d > f.DateTo {
				continue
			}
		}
		out = append(out, inv)
	}
	return out
}

func summarizeInvoices(invoices []InvoiceRow) SideSummary {
	s := SideSummary{StatusBreakdown: make(map[string]StatusAgg)}
	for _, inv := range invoices {
		amount := invoiceAmount(inv)
		s.TotalAmount += amount
		s.Count++
		if NormalizeStatus(inv.Status) == "paid" {
			s.PaidAmount += amount
			s.PaidCount++
		} else {
			s.PendingAmount += amount
			s.PendingCount++
		}
		key := breakdownKey(inv.Status)
		agg := s.StatusBreakdown[key]
		agg.Count++
		agg.Amount = utils.Round2(agg.Amount + amount)
		s.StatusBreakdown[key] = agg
	}
	s.TotalAmount = utils.Round2(s.TotalAmount)
	s.PaidAmount = utils.Round2(s.PaidAmount)
	s.PendingAmount = utils.Round2(s.PendingAmount)
	return s
}

func summarizePayments(payments []PaymentRow) SideSummary {
	s := SideSummary{StatusBreakdown: make(map[string]StatusAgg)}
	for _, p := range payments {
		amount := ParseAmount(p.Amount)
		s.TotalAmount += amount
		s.Count++
		if NormalizeStatus(p.Status) == "paid" {
			s.PaidAmount += amount
			s.PaidCount++
		} else {
			s.PendingAmount += amount
			s.PendingCount++
		}
		key := breakdownKey(p.Status)
		agg := s.StatusBreakdown[key]
		agg.Count++
		agg.Amount = utils.Round2(agg.Amount + amount)
		s.StatusBreakdown[key] = agg
	}
	s.TotalAmount = utils.Round2(s.TotalAmount)
	s.PaidAmount = utils.Round2(s.PaidAmount)
	s.PendingAmount = utils.Round2(s.PendingAmount)
	return s
}

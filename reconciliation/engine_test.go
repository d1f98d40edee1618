package reconciliation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	invoices []InvoiceRow
	payments []PaymentRow
	invErr   error
	payErr   error
}

func (f *fakeStore) ListInvoices(ctx context.Context, limit int) ([]InvoiceRow, error) {
	if f.invErr != nil {
		return nil, f.invErr
	}
	if len(f.invoices) > limit {
		return f.invoices[:limit], nil
	}
	return f.invoices, nil
}

func (f *fakeStore) ListPayments(ctx context.Context, limit int) ([]PaymentRow, error) {
	if f.payErr != nil {
		return nil, f.payErr
	}
	if len(f.payments) > limit {
		return f.payments[:limit], nil
	}
	return f.payments, nil
}

func run(t *testing.T, store *fakeStore, f Filters) *Result {
	t.Helper()
	res, err := NewEngine(store).Run(context.Background(), f)
	require.NoError(t, err)
	return res
}

func TestRoundingBucketStability(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{{ID: "i1", TotalAmount: "10.005", Status: "PENDING"}},
		payments: []PaymentRow{{ID: "p1", Amount: "10.0049999", Status: "SUCCEEDED"}},
	}
	res := run(t, store, Filters{})

	require.Len(t, res.Data, 1)
	assert.Equal(t, []string{"p1"}, res.Data[0].PaymentIDs)
}

func TestNonPositiveInvoicesExcluded(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{
			{ID: "zero", TotalAmount: "0.00"},
			{ID: "negative", TotalAmount: "-5.00"},
		},
		payments: []PaymentRow{
			{ID: "p1", Amount: "0.00"},
			{ID: "p2", Amount: "-5.00"},
		},
	}
	res := run(t, store, Filters{})

	assert.Empty(t, res.Data)
	// Summaries still reflect the (filtered) collections.
	assert.Equal(t, 2, res.Summary.Invoices.Count)
}

func TestStatusFilterBreadth(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{
			{ID: "a", TotalAmount: "1.00", Status: "PAID"},
			{ID: "b", TotalAmount: "2.00", Status: "PENDING"},
			{ID: "c", TotalAmount: "3.00", Status: "PARTIAL"},
			{ID: "d", TotalAmount: "4.00", Status: "UNPAID"},
			{ID: "e", TotalAmount: "5.00", Status: ""},
		},
	}

	res := run(t, store, Filters{InvoiceStatus: "PENDING"})
	assert.Equal(t, 4, res.Summary.Invoices.Count)

	res = run(t, store, Filters{InvoiceStatus: "PAID"})
	assert.Equal(t, 1, res.Summary.Invoices.Count)

	// Any other value is an exact case-insensitive raw match.
	res = run(t, store, Filters{InvoiceStatus: "partial"})
	assert.Equal(t, 1, res.Summary.Invoices.Count)
}

func TestMatchTypeCustomer(t *testing.T) {
	invoice := InvoiceRow{ID: "i1", CustomerName: "Jane Doe", TotalAmount: "100.00", Status: "PENDING"}
	jane := PaymentRow{ID: "p1", CustomerName: "jane doe", Amount: "100.00", Status: "SUCCEEDED"}
	john := PaymentRow{ID: "p2", CustomerName: "John Smith", Amount: "100.00", Status: "SUCCEEDED"}

	res := run(t, &fakeStore{invoices: []InvoiceRow{invoice}, payments: []PaymentRow{jane, john}}, Filters{})
	require.Len(t, res.Data, 1)
	assert.Equal(t, MatchAmountOnly, res.Data[0].MatchType)
	assert.Len(t, res.Data[0].PaymentIDs, 2)

	res = run(t, &fakeStore{invoices: []InvoiceRow{invoice}, payments: []PaymentRow{jane}}, Filters{})
	require.Len(t, res.Data, 1)
	assert.Equal(t, MatchAmountAndCustomer, res.Data[0].MatchType)
}

func TestEmptyCustomerNeverMatches(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{{ID: "i1", CustomerName: "  ", TotalAmount: "75.00"}},
		payments: []PaymentRow{{ID: "p1", CustomerName: "", Amount: "75.00"}},
	}
	res := run(t, store, Filters{})

	require.Len(t, res.Data, 1)
	assert.Equal(t, MatchAmountOnly, res.Data[0].MatchType)
}

func TestSummaryIndependenceFromInvoiceFilters(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{
			{ID: "i1", TotalAmount: "10.00", Status: "PAID", CreatedAt: "2026-01-05T10:00:00Z"},
			{ID: "i2", TotalAmount: "20.00", Status: "PENDING", CreatedAt: "2026-02-05T10:00:00Z"},
		},
		payments: []PaymentRow{
			{ID: "p1", Amount: "10.00", Status: "SUCCEEDED"},
			{ID: "p2", Amount: "20.00", Status: "PENDING"},
			{ID: "p3", Amount: "30.00", Status: "COMPLETED"},
		},
	}

	unfiltered := run(t, store, Filters{})
	filtered := run(t, store, Filters{InvoiceStatus: "PAID", DateFrom: "2026-01-01", DateTo: "2026-01-31"})

	assert.Equal(t, 1, filtered.Summary.Invoices.Count)
	assert.Equal(t, unfiltered.Summary.Payments, filtered.Summary.Payments)
	assert.Equal(t, 3, filtered.Summary.Payments.Count)
	assert.InDelta(t, 60.00, filtered.Summary.Payments.TotalAmount, 1e-9)
	assert.InDelta(t, 40.00, filtered.Summary.Payments.PaidAmount, 1e-9)
}

func TestManyToOneCandidates(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{
			{ID: "i1", TotalAmount: "50.00"},
			{ID: "i2", TotalAmount: "50.00"},
		},
		payments: []PaymentRow{{ID: "p1", Amount: "50.00"}},
	}
	res := run(t, store, Filters{})

	require.Len(t, res.Data, 2)
	assert.Equal(t, []string{"p1"}, res.Data[0].PaymentIDs)
	assert.Equal(t, []string{"p1"}, res.Data[1].PaymentIDs)
}

func TestAmountFallback(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{
			// Blank total falls back to the paid rollup.
			{ID: "i1", TotalAmount: "", PaidTotalAmount: "40.00"},
			// A parseable zero does not fall back.
			{ID: "i2", TotalAmount: "0.00", PaidTotalAmount: "40.00"},
		},
		payments: []PaymentRow{{ID: "p1", Amount: "40.00"}},
	}
	res := run(t, store, Filters{})

	require.Len(t, res.Data, 1)
	assert.Equal(t, "i1", res.Data[0].InvoiceID)
}

func TestDateFilterLexicalWithFallback(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{
			{ID: "in", TotalAmount: "1.00", CreatedAt: "2026-03-15T08:00:00Z"},
			{ID: "out", TotalAmount: "2.00", CreatedAt: "2026-04-01T08:00:00Z"},
			{ID: "fallback", TotalAmount: "3.00", CreatedAt: "", DueDate: "2026-03-20"},
		},
	}
	res := run(t, store, Filters{DateFrom: "2026-03-01", DateTo: "2026-03-31"})

	assert.Equal(t, 2, res.Summary.Invoices.Count)
}

func TestStatusBreakdownKeys(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{
			{ID: "i1", TotalAmount: "10.00", Status: "PARTIAL"},
			{ID: "i2", TotalAmount: "5.00", Status: ""},
		},
	}
	res := run(t, store, Filters{})

	breakdown := res.Summary.Invoices.StatusBreakdown
	require.Contains(t, breakdown, "PARTIAL")
	require.Contains(t, breakdown, "(empty)")
	assert.Equal(t, 1, breakdown["(empty)"].Count)
	assert.InDelta(t, 5.00, breakdown["(empty)"].Amount, 1e-9)
}

func TestFetchOrderPreserved(t *testing.T) {
	store := &fakeStore{
		invoices: []InvoiceRow{
			{ID: "later", TotalAmount: "20.00"},
			{ID: "earlier", TotalAmount: "10.00"},
		},
		payments: []PaymentRow{
			{ID: "p10", Amount: "10.00"},
			{ID: "p20", Amount: "20.00"},
		},
	}
	res := run(t, store, Filters{})

	require.Len(t, res.Data, 2)
	assert.Equal(t, "later", res.Data[0].InvoiceID)
	assert.Equal(t, "earlier", res.Data[1].InvoiceID)
}

func TestFetchErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewEngine(&fakeStore{payErr: boom}).Run(context.Background(), Filters{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestLimitClamping(t *testing.T) {
	assert.Equal(t, 500, Filters{}.limit())
	assert.Equal(t, 500, Filters{Limit: 0}.limit())
	assert.Equal(t, 1, Filters{Limit: -3}.limit())
	assert.Equal(t, 1000, Filters{Limit: 5000}.limit())
	assert.Equal(t, 42, Filters{Limit: 42}.limit())
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "paid", NormalizeStatus("PAID"))
	assert.Equal(t, "paid", NormalizeStatus("succeeded"))
	assert.Equal(t, "paid", NormalizeStatus(" Completed "))
	assert.Equal(t, "pending", NormalizeStatus("PARTIAL"))
	assert.Equal(t, "pending", NormalizeStatus(""))
	assert.Equal(t, "pending", NormalizeStatus("anything else"))
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 1234.56, ParseAmount("1,234.56"))
	assert.Equal(t, 0.0, ParseAmount(""))
	assert.Equal(t, 0.0, ParseAmount("not a number"))
	assert.Equal(t, -5.0, ParseAmount("-5.00"))
}

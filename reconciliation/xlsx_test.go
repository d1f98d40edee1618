package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderXLSX(t *testing.T) {
	res := &Result{
		Data: []Row{{
			InvoiceID:      "i1",
			InvoiceNumber:  "INV-001",
			InvoiceAmount:  42.00,
			MatchType:      MatchAmountAndCustomer,
			PaymentIDs:     []string{"p1"},
			PaymentAmounts: []float64{42.00},
		}},
		Summary: Summary{
			Invoices: SideSummary{TotalAmount: 42, Count: 1, StatusBreakdown: map[string]StatusAgg{"PAID": {Count: 1, Amount: 42}}},
			Payments: SideSummary{TotalAmount: 42, Count: 1, StatusBreakdown: map[string]StatusAgg{}},
		},
	}

	book, err := RenderXLSX(res)
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{"Matches", "Summary"}, book.GetSheetList())

	got, err := book.GetCellValue("Matches", "B2")
	require.NoError(t, err)
	assert.Equal(t, "INV-001", got)

	rows, err := book.GetRows("Summary")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"category", "key", "count", "amount"}, rows[0])
}

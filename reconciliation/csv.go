package reconciliation

import (
	"sort"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"invoice_id", "invoice_number", "invoice_customer", "invoice_amount",
	"invoice_status", "raw_status", "invoice_created_at", "match_type",
	"payment_ids", "payment_customers", "payment_amounts", "payment_dates",
}

// RenderCSV flattens a result into one CSV row per invoice (payment arrays
// joined with ";") followed by summary rows keyed by category.
func RenderCSV(res *Result) string {
	var b strings.Builder

	writeRecord(&b, csvHeader)
	for _, row := range res.Data {
		writeRecord(&b, []string{
			row.InvoiceID,
			row.InvoiceNumber,
			row.InvoiceCustomer,
			money(row.InvoiceAmount),
			row.InvoiceStatus,
			row.RawStatus,
			row.InvoiceCreatedAt,
			row.MatchType,
			strings.Join(row.PaymentIDs, ";"),
			strings.Join(row.PaymentCustomers, ";"),
			joinAmounts(row.PaymentAmounts),
			strings.Join(row.PaymentDates, ";"),
		})
	}

	writeSummarySide(&b, "invoices", "total_invoice_amount", "invoice_count", res.Summary.Invoices)
	writeSummarySide(&b, "payments", "total_payment_amount", "payment_count", res.Summary.Payments)

	return b.String()
}

func writeSummarySide(b *strings.Builder, category, totalKey, countKey string, side SideSummary) {
	writeRecord(b, []string{category, totalKey, money(side.TotalAmount)})
	writeRecord(b, []string{category, countKey, strconv.Itoa(side.Count)})
	writeRecord(b, []string{category, "paid_amount", money(side.PaidAmount)})
	writeRecord(b, []string{category, "paid_count", strconv.Itoa(side.PaidCount)})
	writeRecord(b, []string{category, "pending_amount", money(side.PendingAmount)})
	writeRecord(b, []string{category, "pending_count", strconv.Itoa(side.PendingCount)})

	keys := make([]string, 0, len(side.StatusBreakdown))
	for k := range side.StatusBreakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		agg := side.StatusBreakdown[k]
		writeRecord(b, []string{category, "status:" + k, strconv.Itoa(agg.Count), money(agg.Amount)})
	}
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(f))
	}
	b.WriteByte('\n')
}

// escapeCSV quotes a field only when it contains a comma, quote, or newline,
// doubling any embedded quotes.
func escapeCSV(f string) string {
	if !strings.ContainsAny(f, ",\"\n") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func joinAmounts(amounts []float64) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = money(a)
	}
	return strings.Join(parts, ";")
}

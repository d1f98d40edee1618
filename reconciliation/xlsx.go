package reconciliation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RenderXLSX writes the result into a two-sheet workbook: Matches mirrors the
// CSV rows, Summary holds both side aggregates. Used by the dashboard export.
func RenderXLSX(res *Result) (*excelize.File, error) {
	f := excelize.NewFile()

	const matches = "Matches"
	if err := f.SetSheetName("Sheet1", matches); err != nil {
		return nil, err
	}
	if err := writeSheetRow(f, matches, 1, toAny(csvHeader)); err != nil {
		return nil, err
	}
	for i, row := range res.Data {
		vals := []any{
			row.InvoiceID, row.InvoiceNumber, row.InvoiceCustomer, row.InvoiceAmount,
			row.InvoiceStatus, row.RawStatus, row.InvoiceCreatedAt, row.MatchType,
			strings.Join(row.PaymentIDs, ";"),
			strings.Join(row.PaymentCustomers, ";"),
			joinAmounts(row.PaymentAmounts),
			strings.Join(row.PaymentDates, ";"),
		}
		if err := writeSheetRow(f, matches, i+2, vals); err != nil {
			return nil, err
		}
	}

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	line := 1
	if err := writeSheetRow(f, summary, line, []any{"category", "key", "count", "amount"}); err != nil {
		return nil, err
	}
	line++
	line, err := writeSummarySheet(f, summary, line, "invoices", res.Summary.Invoices)
	if err != nil {
		return nil, err
	}
	if _, err := writeSummarySheet(f, summary, line, "payments", res.Summary.Payments); err != nil {
		return nil, err
	}

	return f, nil
}

func writeSummarySheet(f *excelize.File, sheet string, line int, category string, side SideSummary) (int, error) {
	rows := [][]any{
		{category, "total_amount", side.Count, side.TotalAmount},
		{category, "paid", side.PaidCount, side.PaidAmount},
		{category, "pending", side.PendingCount, side.PendingAmount},
	}
	keys := make([]string, 0, len(side.StatusBreakdown))
	for k := range side.StatusBreakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		agg := side.StatusBreakdown[k]
		rows = append(rows, []any{category, "status:" + k, agg.Count, agg.Amount})
	}

	for _, vals := range rows {
		if err := writeSheetRow(f, sheet, line, vals); err != nil {
			return line, err
		}
		line++
	}
	return line, nil
}

func writeSheetRow(f *excelize.File, sheet string, line int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, line, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

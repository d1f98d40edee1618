package controllers

import (
	"strconv"
	"strings"

	"doulaops-backend/config"
	"doulaops-backend/reconciliation"

	"github.com/gofiber/fiber/v2"
)

func reconciliationFilters(c *fiber.Ctx) reconciliation.Filters {
	// Malformed limit coerces to the default, never a 4xx.
	limit, _ := strconv.Atoi(c.Query("limit"))
	return reconciliation.Filters{
		Limit:         limit,
		InvoiceStatus: c.Query("invoice_status"),
		DateFrom:      c.Query("date_from"),
		DateTo:        c.Query("date_to"),
	}
}

// Reconciliation serves the JSON report; ?format=csv or a /csv path suffix
// switches to the CSV rendering.
func Reconciliation(engine *reconciliation.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := engine.Run(c.Context(), reconciliationFilters(c))
		if err != nil {
			config.LogError(config.GetLogger(), "reconciliation", "Reconciliation", "run failed", nil, err)
			return c.Status(500).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		if c.Query("format") == "csv" || strings.HasSuffix(c.Path(), "/csv") {
			return sendReconciliationCSV(c, res)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    res.Data,
			"summary": res.Summary,
		})
	}
}

// ReconciliationCSV serves the CSV rendering directly.
func ReconciliationCSV(engine *reconciliation.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := engine.Run(c.Context(), reconciliationFilters(c))
		if err != nil {
			config.LogError(config.GetLogger(), "reconciliation", "ReconciliationCSV", "run failed", nil, err)
			return c.Status(500).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		return sendReconciliationCSV(c, res)
	}
}

func sendReconciliationCSV(c *fiber.Ctx, res *reconciliation.Result) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reconciliation.csv"`)
	return c.SendString(reconciliation.RenderCSV(res))
}

// ReconciliationXLSX serves the workbook export for the dashboard.
func ReconciliationXLSX(engine *reconciliation.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := engine.Run(c.Context(), reconciliationFilters(c))
		if err != nil {
			config.LogError(config.GetLogger(), "reconciliation", "ReconciliationXLSX", "run failed", nil, err)
			return c.Status(500).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		book, err := reconciliation.RenderXLSX(res)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		buf, err := book.WriteToBuffer()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="reconciliation.xlsx"`)
		return c.Send(buf.Bytes())
	}
}

package controllers

import (
	"doulaops-backend/config"
	"doulaops-backend/database"
	"doulaops-backend/models"
	"doulaops-backend/services"

	"github.com/gofiber/fiber/v2"
)

// SyncQuickBooks pushes every paid invoice that hasn't been synced yet.
func SyncQuickBooks(qb *services.QuickBooksClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !qb.Configured() {
			return c.Status(503).JSON(fiber.Map{"message": "QuickBooks is not connected"})
		}

		var invoices []models.Invoice
		database.DB.Preload("Client").Preload("Items").
			Where("status = ? AND quickbooks_id = ''", "PAID").
			Order("created_at").
			Find(&invoices)

		synced := 0
		var failures []fiber.Map
		for i := range invoices {
			receiptID, err := qb.SyncInvoice(c.Context(), &invoices[i])
			if err != nil {
				config.LogError(config.GetLogger(), "quickbooks", "SyncQuickBooks", "sales receipt failed", invoices[i].InvoiceNumber, err)
				failures = append(failures, fiber.Map{
					"invoice_number": invoices[i].InvoiceNumber,
					"error":          err.Error(),
				})
				continue
			}
			database.DB.Model(&invoices[i]).Update("quickbooks_id", receiptID)
			config.GetLogger().WithField("receipt", receiptID).Info("invoice synced to quickbooks")
			synced++
		}

		return c.JSON(fiber.Map{
			"synced":   synced,
			"failed":   len(failures),
			"failures": failures,
			"message":  "success",
		})
	}
}

// QuickBooksStatus reports whether the connection works by fetching the
// company name.
func QuickBooksStatus(qb *services.QuickBooksClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !qb.Configured() {
			return c.JSON(fiber.Map{"connected": false})
		}
		name, err := qb.CompanyName(c.Context())
		if err != nil {
			return c.JSON(fiber.Map{
				"connected": false,
				"error":     err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"connected": true,
			"company":   name,
		})
	}
}

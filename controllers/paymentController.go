package controllers

import (
	"encoding/json"
	"os"
	"time"

	"doulaops-backend/config"
	"doulaops-backend/database"
	"doulaops-backend/models"
	"doulaops-backend/services"
	"doulaops-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// applyPaymentRollup advances an invoice's paid total by one payment and
// derives the resulting invoice status.
func applyPaymentRollup(invoiceStatus string, total, paidTotal, amount float64) (float64, string) {
	newPaid := utils.Round2(paidTotal + amount)
	status := invoiceStatus
	if newPaid >= total {
		status = "PAID"
	} else if newPaid > 0 {
		status = "PARTIAL"
	}
	return newPaid, status
}

// completeCheckout marks a pending checkout payment completed and rolls the
// invoice forward. Returns false when the payment already completed, so a
// redelivered webhook event never inflates the paid total.
func completeCheckout(payment *models.Payment, invoice *models.Invoice, paymentIntent string, now time.Time) bool {
	if payment.Status == "COMPLETED" {
		return false
	}
	payment.Status = "COMPLETED"
	if paymentIntent != "" {
		payment.StripePaymentID = paymentIntent
	}
	payment.PaidAt = now
	invoice.PaidTotal, invoice.Status = applyPaymentRollup(invoice.Status, invoice.Total, invoice.PaidTotal, payment.Amount)
	return true
}

// CreateCheckoutSession opens a Stripe-hosted payment page for the invoice's
// outstanding balance.
func CreateCheckoutSession(stripe *services.StripeClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var invoice models.Invoice
		if err := database.DB.Preload("Client").First(&invoice, "id = ?", id).Error; err != nil {
			return c.Status(404).JSON(fiber.Map{"message": "Invoice not found"})
		}

		outstanding := utils.Round2(invoice.Total - invoice.PaidTotal)
		if outstanding <= 0 {
			return c.Status(409).JSON(fiber.Map{"message": "Invoice already paid"})
		}

		appURL := os.Getenv("APP_URL")
		session, err := stripe.CreateCheckoutSession(c.Context(),
			invoice.InvoiceNumber,
			invoice.Client.Email,
			outstanding,
			appURL+"/payments/success",
			appURL+"/payments/cancelled",
		)
		if err != nil {
			config.LogError(config.GetLogger(), "payments", "CreateCheckoutSession", "stripe call failed", invoice.InvoiceNumber, err)
			return c.Status(502).JSON(fiber.Map{
				"message": "Payment provider error",
				"error":   err.Error(),
			})
		}

		paymentIntent := ""
		if session.PaymentIntent != nil {
			paymentIntent = session.PaymentIntent.ID
		}

		// Pending payment row; the webhook flips it to COMPLETED.
		payment := models.Payment{
			InvoiceID:       invoice.ID,
			Amount:          outstanding,
			Method:          "stripe",
			Status:          "PENDING",
			StripePaymentID: paymentIntent,
			Reference:       session.ID,
			PaidAt:          time.Now().UTC(),
		}
		tx := database.DB.Begin()
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			return c.Status(500).JSON(fiber.Map{"message": "Could not record payment", "error": err.Error()})
		}
		tx.Commit()

		mirrorPayment(&payment, invoice.Client.FullName())

		return c.JSON(fiber.Map{
			"checkout_url": session.URL,
			"session_id":   session.ID,
		})
	}
}

// StripeWebhook confirms checkout completions. Signature verification happens
// before anything touches the database.
func StripeWebhook(stripe *services.StripeClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := stripe.VerifyWebhook(c.Body(), c.Get("Stripe-Signature"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "Invalid signature"})
		}

		if string(event.Type) != "checkout.session.completed" {
			return c.JSON(fiber.Map{"message": "ignored"})
		}
		if event.Data == nil {
			return c.Status(400).JSON(fiber.Map{"message": "Invalid event payload"})
		}

		var session struct {
			ID                string `json:"id"`
			PaymentIntent     string `json:"payment_intent"`
			ClientReferenceID string `json:"client_reference_id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "Invalid event payload"})
		}

		var payment models.Payment
		if err := database.DB.First(&payment, "reference = ?", session.ID).Error; err != nil {
			config.LogError(config.GetLogger(), "payments", "StripeWebhook", "no pending payment for session", session.ID, err)
			return c.Status(404).JSON(fiber.Map{"message": "Unknown session"})
		}

		var invoice models.Invoice
		if err := database.DB.Preload("Client").First(&invoice, "id = ?", payment.InvoiceID).Error; err != nil {
			return c.Status(404).JSON(fiber.Map{"message": "Invoice not found"})
		}

		// Stripe redelivers events; an already-completed payment means the
		// rollup for this session ran on an earlier delivery.
		if !completeCheckout(&payment, &invoice, session.PaymentIntent, time.Now().UTC()) {
			return c.JSON(fiber.Map{"message": "success"})
		}

		tx := database.DB.Begin()
		if err := tx.Model(&payment).Updates(map[string]any{
			"status":            payment.Status,
			"stripe_payment_id": payment.StripePaymentID,
			"paid_at":           payment.PaidAt,
		}).Error; err != nil {
			tx.Rollback()
			return c.Status(500).JSON(fiber.Map{"message": "Could not update payment", "error": err.Error()})
		}
		if err := tx.Model(&invoice).Updates(map[string]any{
			"paid_total": invoice.PaidTotal,
			"status":     invoice.Status,
		}).Error; err != nil {
			tx.Rollback()
			return c.Status(500).JSON(fiber.Map{"message": "Could not update invoice", "error": err.Error()})
		}
		tx.Commit()

		mirrorInvoice(&invoice, &invoice.Client)
		mirrorPayment(&payment, invoice.Client.FullName())

		return c.JSON(fiber.Map{"message": "success"})
	}
}

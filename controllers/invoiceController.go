package controllers

import (
	"strconv"
	"time"

	"doulaops-backend/database"
	"doulaops-backend/middlewares"
	"doulaops-backend/models"
	"doulaops-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type InvoiceItemInput struct {
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type InvoiceInput struct {
	InvoiceNumber string             `json:"invoice_number" validate:"required"`
	ClientID      uint               `json:"client_id" validate:"required"`
	DueDate       string             `json:"due_date" validate:"omitempty,ymd"`
	Items         []InvoiceItemInput `json:"items" validate:"min=1,dive"`
}

func CreateInvoice(c *fiber.Ctx) error {
	var input InvoiceInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	var client models.Client
	if err := database.DB.First(&client, "id = ?", input.ClientID).Error; err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Unknown client"})
	}

	var items []models.InvoiceItem
	var subtotal float64
	for _, it := range input.Items {
		lineTotal := utils.Round2(it.UnitPrice * float64(it.Quantity))
		subtotal += lineTotal
		items = append(items, models.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   utils.Round2(it.UnitPrice),
			LineTotal:   lineTotal,
		})
	}
	subtotal = utils.Round2(subtotal)

	invoice := models.Invoice{
		InvoiceNumber: input.InvoiceNumber,
		ClientID:      input.ClientID,
		Items:         items,
		Subtotal:      subtotal,
		Total:         subtotal,
		Status:        "PENDING",
	}
	if input.DueDate != "" {
		due, _ := time.Parse("2006-01-02", input.DueDate)
		invoice.DueDate = &due
	}

	tx := database.DB.Begin()
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		return c.Status(500).JSON(fiber.Map{"message": "Could not create invoice", "error": err.Error()})
	}
	tx.Commit()

	mirrorInvoice(&invoice, &client)

	return c.JSON(invoice)
}

func GetInvoices(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	var invoices []models.Invoice
	q := database.DB.Preload("Client").Preload("Items")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&invoices)

	return c.JSON(fiber.Map{
		"invoices": invoices,
		"message":  "success",
	})
}

func GetInvoice(c *fiber.Ctx) error {
	id := c.Params("id")

	var invoice models.Invoice
	if err := database.DB.Preload("Client").Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Invoice not found"})
	}
	return c.JSON(invoice)
}

type PaymentInput struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Method    string  `json:"method" validate:"required"`
	Reference string  `json:"reference"`
	Note      string  `json:"note"`
	PaidAt    string  `json:"paid_at" validate:"omitempty,ymd"` // defaults to today
}

// CreatePayment records a manual (non-Stripe) payment against an invoice and
// rolls the invoice's paid total forward.
func CreatePayment(c *fiber.Ctx) error {
	id := c.Params("id")

	var invoice models.Invoice
	if err := database.DB.Preload("Client").First(&invoice, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Invoice not found"})
	}

	var input PaymentInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	paidAt := time.Now().UTC()
	if input.PaidAt != "" {
		paidAt, _ = time.Parse("2006-01-02", input.PaidAt)
	}

	payment := models.Payment{
		InvoiceID: invoice.ID,
		Amount:    utils.Round2(input.Amount),
		Method:    input.Method,
		Reference: input.Reference,
		Note:      input.Note,
		Status:    "COMPLETED",
		PaidAt:    paidAt,
	}

	tx := database.DB.Begin()
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return c.Status(500).JSON(fiber.Map{"message": "Could not record payment", "error": err.Error()})
	}

	newPaid, status := applyPaymentRollup(invoice.Status, invoice.Total, invoice.PaidTotal, payment.Amount)
	if err := tx.Model(&invoice).Updates(map[string]any{
		"paid_total": newPaid,
		"status":     status,
	}).Error; err != nil {
		tx.Rollback()
		return c.Status(500).JSON(fiber.Map{"message": "Could not update invoice", "error": err.Error()})
	}
	tx.Commit()

	invoice.PaidTotal = newPaid
	invoice.Status = status
	mirrorInvoice(&invoice, &invoice.Client)
	mirrorPayment(&payment, invoice.Client.FullName())

	return c.JSON(payment)
}

func ListPayments(c *fiber.Ctx) error {
	id := c.Params("id")

	var payments []models.Payment
	database.DB.Where("invoice_id = ?", id).Order("paid_at").Find(&payments)

	return c.JSON(fiber.Map{
		"payments": payments,
		"message":  "success",
	})
}

// mirrorInvoice pushes the billing projection to the Cloud SQL mirror.
// Best-effort: mirror failures are logged inside the database helpers and do
// not fail the request.
func mirrorInvoice(invoice *models.Invoice, client *models.Client) {
	if database.CloudSQL == nil {
		return
	}
	_ = database.MirrorInvoice(
		strconv.FormatUint(uint64(invoice.ID), 10),
		invoice.InvoiceNumber,
		client.FullName(),
		strconv.FormatFloat(invoice.Total, 'f', 2, 64),
		strconv.FormatFloat(invoice.PaidTotal, 'f', 2, 64),
		invoice.Status,
		invoice.CreatedAt,
		invoice.DueDate,
	)
}

func mirrorPayment(payment *models.Payment, customerName string) {
	if database.CloudSQL == nil {
		return
	}
	_ = database.MirrorPayment(
		strconv.FormatUint(uint64(payment.ID), 10),
		customerName,
		strconv.FormatFloat(payment.Amount, 'f', 2, 64),
		payment.Status,
		payment.PaidAt,
	)
}

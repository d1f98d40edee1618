package routes

import (
	"github.com/gofiber/fiber/v2"

	"doulaops-backend/controllers"
	"doulaops-backend/middlewares"
	"doulaops-backend/models"
	"doulaops-backend/reconciliation"
	"doulaops-backend/services"
)

// Deps are the externally constructed clients the handlers close over.
// Wiring them here (instead of package globals) keeps process lifecycle at
// the composition root and lets tests swap in fakes.
type Deps struct {
	Recon      *reconciliation.Engine
	Stripe     *services.StripeClient
	ESign      services.ESignClient
	QuickBooks *services.QuickBooksClient
}

// Register wires all HTTP routes.
func Register(app *fiber.App, d Deps) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Provider callbacks authenticate themselves (signature / envelope id)
	api.Post("/webhooks/stripe", controllers.StripeWebhook(d.Stripe))
	api.Post("/webhooks/esign", controllers.ESignWebhook())

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard for mutating requests
	protected.Use(middlewares.Idempotency())

	// Clients (intake)
	protected.Post("/client", controllers.CreateClient)
	protected.Get("/clients", controllers.GetClients)
	protected.Get("/client/:id", controllers.GetClient)
	protected.Put("/client/:id", controllers.UpdateClient)
	protected.Delete("/client/:id", controllers.ArchiveClient)

	// Contracts + e-signature
	protected.Post("/contract", controllers.CreateContract)
	protected.Get("/contracts", controllers.GetContracts)
	protected.Get("/contract/:id", controllers.GetContract)
	protected.Put("/contract/:id/send", controllers.SendContract(d.ESign))

	// Invoices & payments
	protected.Post("/invoice", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoice/:id", controllers.GetInvoice)
	protected.Post("/invoices/:id/payments", controllers.CreatePayment)
	protected.Get("/invoices/:id/payments", controllers.ListPayments)
	protected.Post("/invoices/:id/checkout", controllers.CreateCheckoutSession(d.Stripe))

	// Reporting
	protected.Get("/dashboard", controllers.GetDashboard)
	protected.Get("/reconciliation", controllers.Reconciliation(d.Recon))
	protected.Get("/reconciliation/csv", controllers.ReconciliationCSV(d.Recon))
	protected.Get("/reconciliation/xlsx", controllers.ReconciliationXLSX(d.Recon))

	// Admin-only
	admin := protected.Group("")
	admin.Use(middlewares.RequireRole(models.RoleAdmin))
	admin.Post("/staff", controllers.CreateStaffMember)
	admin.Get("/staff", controllers.GetStaffMembers)
	admin.Put("/staff/:id", controllers.UpdateStaffMember)
	admin.Post("/quickbooks/sync", controllers.SyncQuickBooks(d.QuickBooks))
	admin.Get("/quickbooks/status", controllers.QuickBooksStatus(d.QuickBooks))
}

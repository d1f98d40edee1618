package database

import (
	"fmt"
	"os"
	"time"

	"doulaops-backend/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CloudSQL is the PHI-segregated mirror instance. Invoices and payments are
// copied here as flat projections; the reconciliation engine only ever reads
// from this connection, never from the primary.
var CloudSQL *gorm.DB

func ConnectCloudSQL() {
	host := os.Getenv("CLOUDSQL_HOST")
	if host == "" {
		host = "cloudsql"
	}
	port := os.Getenv("CLOUDSQL_PORT")
	if port == "" {
		port = "5432"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, os.Getenv("CLOUDSQL_USER"), os.Getenv("CLOUDSQL_PASSWORD"), os.Getenv("CLOUDSQL_NAME"), port)

	var err error
	CloudSQL, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		fmt.Println(err)
		panic("Could not connect to Cloud SQL mirror")
	}
}

// MigrateCloudSQL creates the mirror tables. Amounts are stored as text on
// purpose: the mirror carries whatever the upstream projection produced,
// normalization happens at read time in the reconciliation engine.
func MigrateCloudSQL() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS invoice_mirror (
			id TEXT PRIMARY KEY,
			invoice_number TEXT,
			customer_name TEXT,
			total_amount TEXT,
			paid_total_amount TEXT,
			status TEXT,
			created_at TEXT,
			due_date TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS payment_mirror (
			id TEXT PRIMARY KEY,
			customer_name TEXT,
			amount TEXT,
			status TEXT,
			created_at TEXT
		)`,
	}
	for _, s := range stmts {
		if err := CloudSQL.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

// MirrorInvoice upserts one invoice projection. Best-effort: callers log and
// continue on failure, the mirror is reconciled lazily, not transactionally.
func MirrorInvoice(id, invoiceNumber, customerName, totalAmount, paidTotalAmount, status string, createdAt time.Time, dueDate *time.Time) error {
	due := ""
	if dueDate != nil {
		due = dueDate.UTC().Format(time.RFC3339)
	}
	err := CloudSQL.Exec(`INSERT INTO invoice_mirror
		(id, invoice_number, customer_name, total_amount, paid_total_amount, status, created_at, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			invoice_number = EXCLUDED.invoice_number,
			customer_name = EXCLUDED.customer_name,
			total_amount = EXCLUDED.total_amount,
			paid_total_amount = EXCLUDED.paid_total_amount,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			due_date = EXCLUDED.due_date`,
		id, invoiceNumber, customerName, totalAmount, paidTotalAmount, status,
		createdAt.UTC().Format(time.RFC3339), due).Error
	if err != nil {
		config.LogError(config.GetLogger(), "database", "MirrorInvoice", "upsert invoice projection", id, err)
	}
	return err
}

// MirrorPayment upserts one payment projection.
func MirrorPayment(id, customerName, amount, status string, createdAt time.Time) error {
	err := CloudSQL.Exec(`INSERT INTO payment_mirror
		(id, customer_name, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			customer_name = EXCLUDED.customer_name,
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at`,
		id, customerName, amount, status, createdAt.UTC().Format(time.RFC3339)).Error
	if err != nil {
		config.LogError(config.GetLogger(), "database", "MirrorPayment", "upsert payment projection", id, err)
	}
	return err
}

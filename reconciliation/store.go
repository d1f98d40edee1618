package reconciliation

import (
	"context"

	"gorm.io/gorm"
)

// CloudSQLStore reads the invoice/payment mirror tables. Column NULLs are
// coalesced to empty strings so the engine only ever sees string projections.
type CloudSQLStore struct {
	db *gorm.DB
}

func NewCloudSQLStore(db *gorm.DB) *CloudSQLStore {
	return &CloudSQLStore{db: db}
}

var _ Store = (*CloudSQLStore)(nil)

func (s *CloudSQLStore) ListInvoices(ctx context.Context, limit int) ([]InvoiceRow, error) {
	var rows []InvoiceRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT id,
		       COALESCE(invoice_number, '')    AS invoice_number,
		       COALESCE(customer_name, '')     AS customer_name,
		       COALESCE(total_amount, '')      AS total_amount,
		       COALESCE(paid_total_amount, '') AS paid_total_amount,
		       COALESCE(status, '')            AS status,
		       COALESCE(created_at, '')        AS created_at,
		       COALESCE(due_date, '')          AS due_date
		FROM invoice_mirror
		ORDER BY created_at DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CloudSQLStore) ListPayments(ctx context.Context, limit int) ([]PaymentRow, error) {
	var rows []PaymentRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT id,
		       COALESCE(customer_name, '') AS customer_name,
		       COALESCE(amount, '')        AS amount,
		       COALESCE(status, '')        AS status,
		       COALESCE(created_at, '')    AS created_at
		FROM payment_mirror
		ORDER BY created_at DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

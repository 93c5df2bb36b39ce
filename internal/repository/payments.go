package repository

import (
	"context"
	"database/sql"

	"evmapp/internal/database"
	apperrors "evmapp/internal/errors"
	"evmapp/internal/models"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Finalize captures a payment. The UPDATE only matches while the record is
// still in the created state with no gateway payment id, which makes capture
// write-once: a repeat call matches zero rows and is reported as already
// settled, and a payment that already reached a terminal state (captured or
// failed) stays there. The booking is flipped to paid in the same
// transaction.
func (r *PaymentRepository) Finalize(ctx context.Context, orderID, paymentID, method string, raw []byte) (captured bool, bookingID int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE payments
		SET razorpay_payment_id = $2, status = 'captured', method = $3,
		    raw_response = COALESCE($4, raw_response)
		WHERE razorpay_order_id = $1 AND razorpay_payment_id IS NULL
		      AND status = 'created'
		RETURNING booking_id`,
		orderID, paymentID, nullable(method), raw,
	).Scan(&bookingID)

	if err == sql.ErrNoRows {
		// Either the order does not exist or it was already settled.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM payments WHERE razorpay_order_id = $1)`,
			orderID,
		).Scan(&exists); err != nil {
			return false, 0, err
		}
		if !exists {
			return false, 0, apperrors.ErrOrderNotFound
		}
		return false, 0, tx.Commit()
	}
	if err != nil {
		return false, 0, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET paid = TRUE, payment_id = $2 WHERE id = $1`,
		bookingID, paymentID,
	)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return true, bookingID, nil
}

// MarkFailed records a gateway failure notification. A captured payment is
// never demoted: failure events that race a successful capture are dropped.
func (r *PaymentRepository) MarkFailed(ctx context.Context, orderID string, raw []byte) error {
	// Zero rows means an unknown order or one already captured; neither is
	// an error for a webhook delivery.
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = 'failed', raw_response = COALESCE($2, raw_response)
		WHERE razorpay_order_id = $1 AND status <> 'captured'`,
		orderID, raw,
	)
	return err
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	payment := &models.Payment{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, booking_id, razorpay_order_id, razorpay_payment_id, status,
		       amount, currency, method, raw_response, created_at
		FROM payments
		WHERE razorpay_order_id = $1`,
		orderID,
	).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.RazorpayOrderID,
		&payment.RazorpayPaymentID,
		&payment.Status,
		&payment.Amount,
		&payment.Currency,
		&payment.Method,
		&payment.RawResponse,
		&payment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return payment, err
}

// List returns payments newest first, optionally filtered by status.
func (r *PaymentRepository) List(ctx context.Context, status string) ([]models.Payment, error) {
	query := `
		SELECT id, booking_id, razorpay_order_id, razorpay_payment_id, status,
		       amount, currency, method, raw_response, created_at
		FROM payments`
	var args []interface{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var payment models.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.BookingID,
			&payment.RazorpayOrderID,
			&payment.RazorpayPaymentID,
			&payment.Status,
			&payment.Amount,
			&payment.Currency,
			&payment.Method,
			&payment.RawResponse,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

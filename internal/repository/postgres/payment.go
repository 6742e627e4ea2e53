package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

func (r *paymentRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, payment_code, appointment_id, patient_id, amount,
		       payment_method, payment_status, transaction_id, paid_at,
		       created_at, updated_at, deleted_at
		FROM payments
		WHERE appointment_id = $1 AND deleted_at IS NULL
	`
	var payment model.Payment
	err := r.db.GetContext(ctx, &payment, query, appointmentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, transactionID string) error {
	query := `
		UPDATE payments
		SET payment_status = $1, transaction_id = $2, paid_at = $3, updated_at = $3
		WHERE id = $4 AND payment_status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.PaymentStatusCompleted, transactionID, time.Now(), id, model.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark payment completed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("payment not found or not pending")
	}
	return nil
}

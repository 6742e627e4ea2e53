package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
)

const appointmentColumns = `
	id, appointment_code, patient_id, doctor_id, department_id, service_id,
	appointment_date, appointment_time, status, reason, symptoms, notes,
	cancellation_reason, cancelled_by, cancelled_at, checked_in_at,
	completed_at, created_at, updated_at, deleted_at
`

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) GetByCode(ctx context.Context, code string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE appointment_code = $1`
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, query, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment by code: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}
	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.DateFrom.IsZero() {
		query += fmt.Sprintf(" AND appointment_date >= $%d", argCount)
		args = append(args, filters.DateFrom)
		argCount++
	}
	if !filters.DateTo.IsZero() {
		query += fmt.Sprintf(" AND appointment_date <= $%d", argCount)
		args = append(args, filters.DateTo)
		argCount++
	}

	query += " ORDER BY appointment_date ASC, appointment_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_date DESC, appointment_time DESC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ActiveCountsByTime(ctx context.Context, doctorID uuid.UUID, date time.Time) (map[string]int, error) {
	query := `
		SELECT appointment_time, COUNT(*) AS cnt
		FROM appointments
		WHERE doctor_id = $1
		AND appointment_date = $2
		AND status IN ('pending', 'confirmed')
		GROUP BY appointment_time
	`
	rows, err := r.db.QueryxContext(ctx, query, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count booked slots: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var timeKey string
		var cnt int
		if err := rows.Scan(&timeKey, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan booked count: %w", err)
		}
		counts[timeKey] = cnt
	}
	return counts, rows.Err()
}

// WithSlotLock serializes conflicting writers per (doctor, date, time) key
// with a transaction-scoped advisory lock. The lock is released on commit
// or rollback, so a storage failure inside fn leaves no partial row.
func (r *appointmentRepository) WithSlotLock(ctx context.Context, doctorID uuid.UUID, date time.Time, timeKey string, fn func(tx repository.BookingTx) error) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		slotKey := fmt.Sprintf("booking:%s:%s:%s", doctorID, date.Format("2006-01-02"), timeKey)
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, slotKey); err != nil {
			return fmt.Errorf("failed to acquire slot lock: %w", err)
		}
		return fn(&bookingTx{ctx: ctx, tx: tx})
	})
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, appt *model.Appointment, hist *model.AppointmentHistory, evt *model.OutboxEvent) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		b := &bookingTx{ctx: ctx, tx: tx}
		if err := b.updateAppointment(appt); err != nil {
			return err
		}
		if hist != nil {
			if err := b.InsertHistory(hist); err != nil {
				return err
			}
		}
		if evt != nil {
			if err := b.InsertOutboxEvent(evt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *appointmentRepository) Complete(ctx context.Context, appt *model.Appointment, hist *model.AppointmentHistory, record *model.MedicalRecord, prescriptions []*model.Prescription) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		b := &bookingTx{ctx: ctx, tx: tx}
		if err := b.updateAppointment(appt); err != nil {
			return err
		}
		if hist != nil {
			if err := b.InsertHistory(hist); err != nil {
				return err
			}
		}
		if err := b.insertMedicalRecord(record); err != nil {
			return err
		}
		for _, p := range prescriptions {
			if err := b.insertPrescription(p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *appointmentRepository) ListHistory(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentHistory, error) {
	query := `
		SELECT id, appointment_id, changed_by, old_date, old_time, new_date,
		       new_time, old_status, new_status, change_reason, created_at
		FROM appointment_history
		WHERE appointment_id = $1
		ORDER BY created_at ASC
	`
	var history []*model.AppointmentHistory
	err := r.db.SelectContext(ctx, &history, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment history: %w", err)
	}
	return history, nil
}

// bookingTx binds BookingTx operations to one open transaction.
type bookingTx struct {
	ctx context.Context
	tx  *sqlx.Tx
}

func (b *bookingTx) ListActiveWindows(doctorID uuid.UUID, dayOfWeek int) ([]*model.WeeklyAvailability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM weekly_availability
		WHERE doctor_id = $1 AND day_of_week = $2 AND is_active = true AND deleted_at IS NULL
		ORDER BY start_time ASC
	`
	var rows []*model.WeeklyAvailability
	err := b.tx.SelectContext(b.ctx, &rows, query, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to list active windows: %w", err)
	}
	return rows, nil
}

func (b *bookingTx) GetLeave(doctorID uuid.UUID, date time.Time) (*model.DoctorLeave, error) {
	query := `
		SELECT id, doctor_id, leave_date, start_time, end_time, reason,
		       is_full_day, created_at, updated_at, deleted_at
		FROM doctor_leaves
		WHERE doctor_id = $1 AND leave_date = $2 AND deleted_at IS NULL
		LIMIT 1
	`
	var leave model.DoctorLeave
	err := b.tx.GetContext(b.ctx, &leave, query, doctorID, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leave: %w", err)
	}
	return &leave, nil
}

func (b *bookingTx) CountActive(doctorID uuid.UUID, date time.Time, timeKey string, excludeID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = $1
		AND appointment_date = $2
		AND appointment_time = $3
		AND status IN ('pending', 'confirmed')
	`
	args := []interface{}{doctorID, date, timeKey}
	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	var count int
	if err := b.tx.GetContext(b.ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count active appointments: %w", err)
	}
	return count, nil
}

func (b *bookingTx) InsertAppointment(appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, appointment_code, patient_id, doctor_id, department_id,
			service_id, appointment_date, appointment_time, status, reason,
			symptoms, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := b.tx.ExecContext(b.ctx, query,
		appt.ID,
		appt.AppointmentCode,
		appt.PatientID,
		appt.DoctorID,
		appt.DepartmentID,
		appt.ServiceID,
		appt.AppointmentDate,
		appt.AppointmentTime,
		appt.Status,
		appt.Reason,
		appt.Symptoms,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

func (b *bookingTx) UpdateSchedule(appointmentID uuid.UUID, newDate time.Time, newTime string) error {
	query := `
		UPDATE appointments
		SET appointment_date = $1, appointment_time = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := b.tx.ExecContext(b.ctx, query, newDate, newTime, time.Now(), appointmentID)
	if err != nil {
		return fmt.Errorf("failed to update appointment schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (b *bookingTx) InsertHistory(hist *model.AppointmentHistory) error {
	query := `
		INSERT INTO appointment_history (
			id, appointment_id, changed_by, old_date, old_time, new_date,
			new_time, old_status, new_status, change_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if hist.ID == uuid.Nil {
		hist.ID = uuid.New()
	}
	if hist.CreatedAt.IsZero() {
		hist.CreatedAt = time.Now()
	}

	_, err := b.tx.ExecContext(b.ctx, query,
		hist.ID,
		hist.AppointmentID,
		hist.ChangedBy,
		hist.OldDate,
		hist.OldTime,
		hist.NewDate,
		hist.NewTime,
		hist.OldStatus,
		hist.NewStatus,
		hist.ChangeReason,
		hist.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment history: %w", err)
	}
	return nil
}

func (b *bookingTx) InsertPayment(p *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, payment_code, appointment_id, patient_id, amount,
			payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := b.tx.ExecContext(b.ctx, query,
		p.ID,
		p.PaymentCode,
		p.AppointmentID,
		p.PatientID,
		p.Amount,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (b *bookingTx) InsertOutboxEvent(evt *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	now := time.Now()
	evt.Status = model.OutboxStatusPending
	evt.CreatedAt = now
	evt.UpdatedAt = now

	_, err := b.tx.ExecContext(b.ctx, query,
		evt.ID,
		evt.EventType,
		evt.Payload,
		evt.Status,
		evt.CreatedAt,
		evt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func (b *bookingTx) updateAppointment(appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, notes = $2, cancellation_reason = $3, cancelled_by = $4,
		    cancelled_at = $5, checked_in_at = $6, completed_at = $7, updated_at = $8
		WHERE id = $9
	`
	appt.UpdatedAt = time.Now()

	result, err := b.tx.ExecContext(b.ctx, query,
		appt.Status,
		appt.Notes,
		appt.CancellationReason,
		appt.CancelledBy,
		appt.CancelledAt,
		appt.CheckedInAt,
		appt.CompletedAt,
		appt.UpdatedAt,
		appt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (b *bookingTx) insertMedicalRecord(record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (
			id, record_code, appointment_id, patient_id, doctor_id, visit_date,
			diagnosis, symptoms, treatment, lab_results, notes, next_visit_date,
			is_follow_up, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := b.tx.ExecContext(b.ctx, query,
		record.ID,
		record.RecordCode,
		record.AppointmentID,
		record.PatientID,
		record.DoctorID,
		record.VisitDate,
		record.Diagnosis,
		record.Symptoms,
		record.Treatment,
		record.LabResults,
		record.Notes,
		record.NextVisitDate,
		record.IsFollowUp,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert medical record: %w", err)
	}
	return nil
}

func (b *bookingTx) insertPrescription(p *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (
			id, medical_record_id, medication_name, dosage, frequency,
			duration, quantity, instructions, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := b.tx.ExecContext(b.ctx, query,
		p.ID,
		p.MedicalRecordID,
		p.MedicationName,
		p.Dosage,
		p.Frequency,
		p.Duration,
		p.Quantity,
		p.Instructions,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prescription: %w", err)
	}
	return nil
}

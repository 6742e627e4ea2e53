package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

const medicalRecordColumns = `
	id, record_code, appointment_id, patient_id, doctor_id, visit_date,
	diagnosis, symptoms, treatment, lab_results, notes, next_visit_date,
	is_follow_up, created_at, updated_at, deleted_at
`

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = $1 AND deleted_at IS NULL`
	var record model.MedicalRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE appointment_id = $1 AND deleted_at IS NULL`
	var record model.MedicalRecord
	err := r.db.GetContext(ctx, &record, query, appointmentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record by appointment: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `
		SELECT ` + medicalRecordColumns + `
		FROM medical_records
		WHERE patient_id = $1 AND deleted_at IS NULL
		ORDER BY visit_date DESC
	`
	var records []*model.MedicalRecord
	err := r.db.SelectContext(ctx, &records, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) ListPrescriptions(ctx context.Context, recordID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT id, medical_record_id, medication_name, dosage, frequency,
		       duration, quantity, instructions, created_at
		FROM prescriptions
		WHERE medical_record_id = $1
		ORDER BY created_at ASC
	`
	var prescriptions []*model.Prescription
	err := r.db.SelectContext(ctx, &prescriptions, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

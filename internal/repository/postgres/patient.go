package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, user_id, patient_code, blood_type, allergies, medical_notes,
		       emergency_contact_name, emergency_contact_phone, insurance_number,
		       created_at, updated_at, deleted_at
		FROM patients
		WHERE id = $1 AND deleted_at IS NULL
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, user_id, patient_code, blood_type, allergies, medical_notes,
		       emergency_contact_name, emergency_contact_phone, insurance_number,
		       created_at, updated_at, deleted_at
		FROM patients
		WHERE user_id = $1 AND deleted_at IS NULL
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by user: %w", err)
	}
	return &patient, nil
}

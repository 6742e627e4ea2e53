package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, user_id, department_id, license_number, specialization,
		       experience_years, bio, consultation_fee, rating, total_reviews,
		       is_available, created_at, updated_at, deleted_at
		FROM doctors
		WHERE id = $1 AND deleted_at IS NULL
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, user_id, department_id, license_number, specialization,
		       experience_years, bio, consultation_fee, rating, total_reviews,
		       is_available, created_at, updated_at, deleted_at
		FROM doctors
		WHERE user_id = $1 AND deleted_at IS NULL
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor by user: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, name, description, department_id, price, duration_minutes,
		       is_active, created_at, updated_at, deleted_at
		FROM services
		WHERE id = $1 AND deleted_at IS NULL
	`
	var svc model.Service
	err := r.db.GetContext(ctx, &svc, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

func (r *doctorRepository) UpdateRating(ctx context.Context, doctorID uuid.UUID, rating float64, totalReviews int) error {
	query := `
		UPDATE doctors
		SET rating = $1, total_reviews = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, rating, totalReviews, time.Now(), doctorID)
	if err != nil {
		return fmt.Errorf("failed to update doctor rating: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

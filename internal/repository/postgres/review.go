package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, appointment_id, patient_id, doctor_id, rating, comment,
			is_anonymous, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now()
	review.ID = uuid.New()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.AppointmentID,
		review.PatientID,
		review.DoctorID,
		review.Rating,
		review.Comment,
		review.IsAnonymous,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByAppointmentAndPatient(ctx context.Context, appointmentID, patientID uuid.UUID) (*model.Review, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, rating, comment,
		       is_anonymous, created_at, updated_at, deleted_at
		FROM reviews
		WHERE appointment_id = $1 AND patient_id = $2 AND deleted_at IS NULL
	`
	var review model.Review
	err := r.db.GetContext(ctx, &review, query, appointmentID, patientID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Review, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, rating, comment,
		       is_anonymous, created_at, updated_at, deleted_at
		FROM reviews
		WHERE doctor_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	var reviews []*model.Review
	err := r.db.SelectContext(ctx, &reviews, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) RatingStats(ctx context.Context, doctorID uuid.UUID) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE doctor_id = $1 AND deleted_at IS NULL
	`
	var avg float64
	var count int
	err := r.db.QueryRowxContext(ctx, query, doctorID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get rating stats: %w", err)
	}
	return avg, count, nil
}

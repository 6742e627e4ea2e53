package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

const availabilityColumns = `
	id, doctor_id, day_of_week, start_time, end_time, max_patients,
	is_active, created_at, updated_at, deleted_at
`

func (r *scheduleRepository) ListWeeklyAvailability(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.WeeklyAvailability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM weekly_availability
		WHERE doctor_id = $1 AND day_of_week = $2 AND is_active = true AND deleted_at IS NULL
		ORDER BY start_time ASC
	`
	var rows []*model.WeeklyAvailability
	err := r.db.SelectContext(ctx, &rows, query, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly availability: %w", err)
	}
	return rows, nil
}

func (r *scheduleRepository) ListAllAvailability(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklyAvailability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM weekly_availability
		WHERE doctor_id = $1 AND deleted_at IS NULL
		ORDER BY day_of_week ASC, start_time ASC
	`
	var rows []*model.WeeklyAvailability
	err := r.db.SelectContext(ctx, &rows, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return rows, nil
}

func (r *scheduleRepository) GetAvailability(ctx context.Context, id uuid.UUID) (*model.WeeklyAvailability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM weekly_availability
		WHERE id = $1 AND deleted_at IS NULL
	`
	var wa model.WeeklyAvailability
	err := r.db.GetContext(ctx, &wa, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	return &wa, nil
}

func (r *scheduleRepository) CreateAvailability(ctx context.Context, wa *model.WeeklyAvailability) error {
	query := `
		INSERT INTO weekly_availability (
			id, doctor_id, day_of_week, start_time, end_time, max_patients,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	wa.ID = uuid.New()
	wa.CreatedAt = time.Now()
	wa.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		wa.ID,
		wa.DoctorID,
		wa.DayOfWeek,
		wa.StartTime,
		wa.EndTime,
		wa.MaxPatients,
		wa.IsActive,
		wa.CreatedAt,
		wa.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability: %w", err)
	}
	return nil
}

func (r *scheduleRepository) UpdateAvailability(ctx context.Context, wa *model.WeeklyAvailability) error {
	query := `
		UPDATE weekly_availability
		SET start_time = $1, end_time = $2, max_patients = $3, is_active = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`
	wa.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		wa.StartTime,
		wa.EndTime,
		wa.MaxPatients,
		wa.IsActive,
		wa.UpdatedAt,
		wa.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability not found")
	}
	return nil
}

func (r *scheduleRepository) GetLeave(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.DoctorLeave, error) {
	query := `
		SELECT id, doctor_id, leave_date, start_time, end_time, reason,
		       is_full_day, created_at, updated_at, deleted_at
		FROM doctor_leaves
		WHERE doctor_id = $1 AND leave_date = $2 AND deleted_at IS NULL
		LIMIT 1
	`
	var leave model.DoctorLeave
	err := r.db.GetContext(ctx, &leave, query, doctorID, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leave: %w", err)
	}
	return &leave, nil
}

func (r *scheduleRepository) CreateLeave(ctx context.Context, leave *model.DoctorLeave) error {
	query := `
		INSERT INTO doctor_leaves (
			id, doctor_id, leave_date, start_time, end_time, reason,
			is_full_day, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	leave.ID = uuid.New()
	leave.CreatedAt = time.Now()
	leave.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		leave.ID,
		leave.DoctorID,
		leave.LeaveDate,
		leave.StartTime,
		leave.EndTime,
		leave.Reason,
		leave.IsFullDay,
		leave.CreatedAt,
		leave.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create leave: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

func (r *settingRepository) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	query := `
		SELECT id, key, value, description, updated_by, created_at, updated_at
		FROM system_settings
		WHERE key = $1
	`
	var setting model.SystemSetting
	err := r.db.GetContext(ctx, &setting, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &setting, nil
}

func (r *settingRepository) Upsert(ctx context.Context, setting *model.SystemSetting) error {
	query := `
		INSERT INTO system_settings (id, key, value, description, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    description = EXCLUDED.description,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = EXCLUDED.updated_at
	`
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	setting.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		setting.ID,
		setting.Key,
		setting.Value,
		setting.Description,
		setting.UpdatedBy,
		setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

func (r *settingRepository) List(ctx context.Context) ([]*model.SystemSetting, error) {
	query := `
		SELECT id, key, value, description, updated_by, created_at, updated_at
		FROM system_settings
		ORDER BY key ASC
	`
	var settings []*model.SystemSetting
	err := r.db.SelectContext(ctx, &settings, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

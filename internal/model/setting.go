package model

import (
	"time"

	"github.com/google/uuid"
)

// Well-known system setting keys read by the booking core.
const (
	SettingSlotLengthMinutes = "appointment_buffer_minutes"
	SettingCancellationHours = "cancellation_allowed_hours"
)

type SystemSetting struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Key         string     `db:"key" json:"key"`
	Value       string     `db:"value" json:"value"`
	Description string     `db:"description" json:"description,omitempty"`
	UpdatedBy   *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type UpsertSettingRequest struct {
	Value       string `json:"value" binding:"required"`
	Description string `json:"description" binding:"max=500"`
}

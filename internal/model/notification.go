package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeAppointment NotificationType = "appointment"
	NotificationTypeReminder    NotificationType = "reminder"
	NotificationTypePayment     NotificationType = "payment"
	NotificationTypeSystem      NotificationType = "system"
)

type Notification struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	UserID        uuid.UUID        `db:"user_id" json:"user_id"`
	Title         string           `db:"title" json:"title"`
	Message       string           `db:"message" json:"message"`
	Type          NotificationType `db:"type" json:"type"`
	ReferenceID   *uuid.UUID       `db:"reference_id" json:"reference_id,omitempty"`
	ReferenceType string           `db:"reference_type" json:"reference_type,omitempty"`
	IsRead        bool             `db:"is_read" json:"is_read"`
	ReadAt        *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

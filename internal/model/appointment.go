package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn AppointmentStatus = "checked_in"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// ActiveStatuses are the statuses that hold a slot against new bookings.
var ActiveStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
}

// CanTransition reports whether the appointment state machine allows
// moving from one status to another. completed, cancelled and no_show
// are terminal.
func CanTransition(from, to AppointmentStatus) bool {
	switch from {
	case AppointmentStatusPending:
		return to == AppointmentStatusConfirmed ||
			to == AppointmentStatusCheckedIn ||
			to == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return to == AppointmentStatusCheckedIn ||
			to == AppointmentStatusCancelled ||
			to == AppointmentStatusNoShow
	case AppointmentStatusCheckedIn:
		return to == AppointmentStatusCompleted
	default:
		return false
	}
}

// Appointment rows are never physically deleted; history is preserved in
// appointment_history on every reschedule. AppointmentDate carries the
// calendar day and AppointmentTime the "HH:MM" slot start.
type Appointment struct {
	Base
	AppointmentCode    string            `db:"appointment_code" json:"appointment_code"`
	PatientID          uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID           uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	DepartmentID       uuid.UUID         `db:"department_id" json:"department_id"`
	ServiceID          uuid.UUID         `db:"service_id" json:"service_id"`
	AppointmentDate    time.Time         `db:"appointment_date" json:"appointment_date"`
	AppointmentTime    string            `db:"appointment_time" json:"appointment_time"`
	Status             AppointmentStatus `db:"status" json:"status"`
	Reason             string            `db:"reason" json:"reason,omitempty"`
	Symptoms           string            `db:"symptoms" json:"symptoms,omitempty"`
	Notes              string            `db:"notes" json:"notes,omitempty"`
	CancellationReason *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledBy        *uuid.UUID        `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CheckedInAt        *time.Time        `db:"checked_in_at" json:"checked_in_at,omitempty"`
	CompletedAt        *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
}

// AppointmentHistory is an append-only record of a reschedule or status
// change. Rows are written once and never mutated.
type AppointmentHistory struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	AppointmentID uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	ChangedBy     uuid.UUID  `db:"changed_by" json:"changed_by"`
	OldDate       *time.Time `db:"old_date" json:"old_date,omitempty"`
	OldTime       *string    `db:"old_time" json:"old_time,omitempty"`
	NewDate       *time.Time `db:"new_date" json:"new_date,omitempty"`
	NewTime       *string    `db:"new_time" json:"new_time,omitempty"`
	OldStatus     *string    `db:"old_status" json:"old_status,omitempty"`
	NewStatus     *string    `db:"new_status" json:"new_status,omitempty"`
	ChangeReason  string     `db:"change_reason" json:"change_reason,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Slot is one bookable window with its remaining capacity.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Capacity  int    `json:"capacity"`
}

type BookAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	ServiceID       uuid.UUID `json:"service_id" binding:"required"`
	AppointmentDate string    `json:"appointment_date" binding:"required,dateonly"`
	AppointmentTime string    `json:"appointment_time" binding:"required,clock"`
	Reason          string    `json:"reason" binding:"max=1000"`
	Symptoms        string    `json:"symptoms" binding:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	NewDate string `json:"new_date" binding:"required,dateonly"`
	NewTime string `json:"new_time" binding:"required,clock"`
	Reason  string `json:"reason" binding:"max=500"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type ConfirmAppointmentRequest struct {
	TransactionID string `json:"transaction_id" binding:"max=100"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	DateFrom  time.Time
	DateTo    time.Time
}
